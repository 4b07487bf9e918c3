package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/guild"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURE GUILD COMMAND
// Sets a guild's contest cutoff date and tracked crop set.
// ══════════════════════════════════════════════════════════════════════════════

// ConfigureGuildCommand contains the new settings for a guild.
type ConfigureGuildCommand struct {
	GuildID string

	// CutoffYear/Month/Day form the earliest counted contest date. All
	// zero means keep the global default.
	CutoffYear  int
	CutoffMonth int
	CutoffDay   int

	// Crops is the tracked crop set by name. Empty means track all crops.
	Crops []string
}

// Validate checks the command parameters.
func (c *ConfigureGuildCommand) Validate() error {
	if strings.TrimSpace(c.GuildID) == "" {
		return shared.NewDomainError("command", "ConfigureGuild", shared.ErrEmptyValue, "guild id is required")
	}
	if c.CutoffYear != 0 || c.CutoffMonth != 0 || c.CutoffDay != 0 {
		d := timeutil.NewContestDate(c.CutoffYear, c.CutoffMonth, c.CutoffDay)
		if !d.IsValid() {
			return shared.NewDomainError("command", "ConfigureGuild", shared.ErrInvalidInput,
				fmt.Sprintf("invalid cutoff date %d/%d/%d", c.CutoffYear, c.CutoffMonth, c.CutoffDay))
		}
	}
	return nil
}

// ConfigureGuildResult echoes the stored settings.
type ConfigureGuildResult struct {
	GuildID    string   `json:"guild_id"`
	CutoffDate int      `json:"cutoff_date"`
	Crops      []string `json:"crops"`
}

// ConfigureGuildHandler handles guild settings updates.
type ConfigureGuildHandler struct {
	guilds guild.Repository
}

// NewConfigureGuildHandler creates a new settings handler.
func NewConfigureGuildHandler(guilds guild.Repository) *ConfigureGuildHandler {
	return &ConfigureGuildHandler{guilds: guilds}
}

// Handle stores the settings. Unknown crop names are rejected so typos do
// not silently untrack a crop.
func (h *ConfigureGuildHandler) Handle(ctx context.Context, cmd ConfigureGuildCommand) (*ConfigureGuildResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	settings := guild.DefaultSettings(cmd.GuildID)

	if cmd.CutoffYear != 0 || cmd.CutoffMonth != 0 || cmd.CutoffDay != 0 {
		settings.CutoffDate = timeutil.NewContestDate(cmd.CutoffYear, cmd.CutoffMonth, cmd.CutoffDay)
	}

	if len(cmd.Crops) > 0 {
		crops := make([]farming.Crop, 0, len(cmd.Crops))
		for _, name := range cmd.Crops {
			crop, ok := matchCrop(name)
			if !ok {
				return nil, shared.NewDomainError("command", "ConfigureGuild", shared.ErrInvalidInput,
					fmt.Sprintf("unknown crop %q", name))
			}
			crops = append(crops, crop)
		}
		settings.Crops = crops
	}

	if err := h.guilds.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	result := &ConfigureGuildResult{
		GuildID:    settings.GuildID,
		CutoffDate: int(settings.CutoffDate),
		Crops:      make([]string, 0, len(settings.Crops)),
	}
	for _, crop := range settings.Crops {
		result.Crops = append(result.Crops, string(crop))
	}
	return result, nil
}

func matchCrop(name string) (farming.Crop, bool) {
	for _, crop := range farming.AllCrops {
		if strings.EqualFold(string(crop), name) {
			return crop, true
		}
	}
	return "", false
}
