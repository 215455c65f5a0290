package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/chunk"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/service"
)

const CommandName = "search"

type Command struct {
	*base.Command
	search *service.SearchService
	limit  int
}

func New(di *di.Container) *Command {
	cmd := &Command{
		search: di.Search,
		limit:  di.Cfg.Discord().MessageLimit,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"s"}
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	msg := req.Message
	query := c.Resolver.Prompt(ctx, msg, req.Args)
	if query == "" {
		_, err := c.Reply(ctx, msg, c.L("search.queryRequired", nil))
		return err
	}

	progress, err := c.Reply(ctx, msg, c.L("search.searching", map[string]any{
		"Provider": c.search.DisplayName(),
	}))
	if err != nil {
		return err
	}

	result, err := c.search.Search(ctx, query)
	c.LogGeneration(ctx, msg, database.KindSearch, c.search.Provider(), query, err == nil)
	if err != nil {
		c.Logger.WithError(err).WithField("error_type", ai.ErrorTypeOf(err)).Error("Search failed")
		return c.edit(ctx, progress, c.L("search.failed", map[string]any{"Error": err.Error()}))
	}
	if result.Empty() {
		return c.edit(ctx, progress, c.L("search.noResults", nil))
	}

	parts := chunk.Split(c.format(result), c.limit)
	if len(parts) == 0 {
		return c.edit(ctx, progress, c.L("search.noResults", nil))
	}
	if err := c.edit(ctx, progress, parts[0]); err != nil {
		return err
	}
	for _, part := range parts[1:] {
		if _, err := c.Discord.Send(ctx, discord.NewMessage(msg.ChannelID, part)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) edit(ctx context.Context, progress *discord.Message, text string) error {
	_, err := c.Discord.Edit(ctx, discord.NewEditMessage(progress, text))
	return err
}

func (c *Command) format(result *service.SearchResult) string {
	var sb strings.Builder
	if result.Answer != "" {
		sb.WriteString(result.Answer)
		if len(result.Sources) > 0 {
			sb.WriteString("\n\n")
		}
	}
	if len(result.Sources) > 0 {
		sb.WriteString("**" + c.L("search.sources", nil) + "**")
	}
	for i, src := range result.Sources {
		if src.Title != "" {
			fmt.Fprintf(&sb, "\n%d. [%s](<%s>)", i+1, src.Title, src.URL)
		} else {
			fmt.Fprintf(&sb, "\n%d. <%s>", i+1, src.URL)
		}
		if src.Snippet != "" {
			sb.WriteString("\n" + src.Snippet)
		}
	}
	return sb.String()
}
