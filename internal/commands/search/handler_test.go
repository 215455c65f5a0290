package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/commandtest"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results []service.TextResult
	err     error
	queries []string
}

func (f *fakeSearcher) Text(_ context.Context, keywords, _, _ string, _ int) ([]service.TextResult, error) {
	f.queries = append(f.queries, keywords)
	return f.results, f.err
}

func setup(t *testing.T, env map[string]string, searcher *fakeSearcher) (*Command, *commandtest.Env) {
	t.Helper()
	e := commandtest.NewEnv(t, env)
	c := e.Container
	c.Search = service.NewSearchService(config.SearchProviderDuckDuckGo, nil, searcher, c.Cache, c.Logger)
	return New(c), e
}

func request(args string) commands.Request {
	return commands.Request{Message: commandtest.Message("1", "!search "+args), Keyword: CommandName, Args: args}
}

func TestExecute_FormatsSources(t *testing.T) {
	searcher := &fakeSearcher{results: []service.TextResult{
		{Title: "The Go Programming Language", Href: "https://go.dev", Body: "Build simple, secure, scalable systems."},
		{Href: "https://pkg.go.dev"},
	}}
	cmd, env := setup(t, nil, searcher)

	require.NoError(t, cmd.Handle(context.Background(), request("golang")))

	assert.Equal(t, []string{"golang"}, searcher.queries)
	assert.Equal(t, []string{env.L("search.searching", map[string]any{"Provider": "DuckDuckGo"})}, env.Client.SentTexts())
	assert.Equal(t, []string{
		"**Sources:**\n" +
			"1. [The Go Programming Language](<https://go.dev>)\n" +
			"Build simple, secure, scalable systems.\n" +
			"2. <https://pkg.go.dev>",
	}, env.Client.EditTexts())

	var kind string
	err := env.Container.DB.QueryRow("SELECT kind FROM generations WHERE user_id = ?", "user-1").Scan(&kind)
	require.NoError(t, err)
	assert.Equal(t, string(database.KindSearch), kind)
}

func TestExecute_CachesResults(t *testing.T) {
	searcher := &fakeSearcher{results: []service.TextResult{{Title: "Go", Href: "https://go.dev"}}}
	cmd, env := setup(t, nil, searcher)

	require.NoError(t, cmd.Handle(context.Background(), request("golang")))
	require.NoError(t, cmd.Handle(context.Background(), request("GoLang")))

	assert.Len(t, searcher.queries, 1)
	edits := env.Client.EditTexts()
	require.Len(t, edits, 2)
	assert.Equal(t, edits[0], edits[1])
}

func TestExecute_QueryFromReply(t *testing.T) {
	searcher := &fakeSearcher{results: []service.TextResult{{Href: "https://example.com"}}}
	cmd, env := setup(t, nil, searcher)
	env.Client.AddMessage(&discord.Message{ID: "0", ChannelID: "chan-1", Content: "who won the 2018 world cup"})
	req := request("")
	req.Message.ReplyToID = "0"

	require.NoError(t, cmd.Handle(context.Background(), req))

	assert.Equal(t, []string{"who won the 2018 world cup"}, searcher.queries)
}

func TestExecute_QueryRequired(t *testing.T) {
	searcher := &fakeSearcher{}
	cmd, env := setup(t, nil, searcher)

	require.NoError(t, cmd.Handle(context.Background(), request("")))

	assert.Equal(t, []string{env.L("search.queryRequired", nil)}, env.Client.SentTexts())
	assert.Empty(t, searcher.queries)
}

func TestExecute_NoResults(t *testing.T) {
	cmd, env := setup(t, nil, &fakeSearcher{})

	require.NoError(t, cmd.Handle(context.Background(), request("zxqv")))

	assert.Equal(t, []string{env.L("search.noResults", nil)}, env.Client.EditTexts())
}

func TestExecute_Failure(t *testing.T) {
	cmd, env := setup(t, nil, &fakeSearcher{err: errors.New("rate limited")})

	require.NoError(t, cmd.Handle(context.Background(), request("golang")))

	assert.Equal(t, []string{env.L("search.failed", map[string]any{"Error": "rate limited"})}, env.Client.EditTexts())
}

func TestExecute_SplitsLongResults(t *testing.T) {
	var results []service.TextResult
	for range 10 {
		results = append(results, service.TextResult{
			Title: "Result",
			Href:  "https://example.com",
			Body:  strings.Repeat("snippet ", 10),
		})
	}
	cmd, env := setup(t, map[string]string{"GACHICORD_DISCORD__MESSAGE_LIMIT": "200"}, &fakeSearcher{results: results})

	require.NoError(t, cmd.Handle(context.Background(), request("golang")))

	require.Len(t, env.Client.Edits(), 1)
	sent := env.Client.SentTexts()
	require.Greater(t, len(sent), 1)
	for _, part := range append(env.Client.EditTexts(), sent[1:]...) {
		assert.LessOrEqual(t, len([]rune(part)), 200)
	}
}

func TestFormat_AnswerWithCitations(t *testing.T) {
	cmd, _ := setup(t, nil, &fakeSearcher{})

	text := cmd.format(&service.SearchResult{
		Answer:  "Argentina won.",
		Sources: []service.Source{{URL: "https://fifa.com"}},
	})

	assert.Equal(t, "Argentina won.\n\n**Sources:**\n1. <https://fifa.com>", text)
}

func TestAliases(t *testing.T) {
	cmd, _ := setup(t, nil, &fakeSearcher{})
	assert.Equal(t, []string{"s"}, cmd.Aliases())
}
