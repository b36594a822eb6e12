package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/afumu/watrace/internal/importer"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/internal/parser"
	"github.com/afumu/watrace/store"
	"github.com/afumu/watrace/store/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `1/1/2024, 09:59 - Messages and calls are end-to-end encrypted.
1/1/2024, 10:00 - Alice: Hi Bob
1/1/2024, 10:05 - Bob: Hello Alice
this line continues
1/1/2024, 16:00 - Alice: <Media omitted>
`

func newService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s, err := store.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, importer.New(0), Options{Parser: parser.DefaultOptions()}), s
}

func TestImport(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	res, err := svc.Import(ctx, "WhatsApp Chat with Bob.txt", strings.NewReader(export), svc.Defaults())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, 1, res.Skipped[string(parser.NoSenderSeparator)])
	assert.Equal(t, 1, res.Skipped[string(parser.NoDatePrefix)])
	assert.Equal(t, "Bob", res.Chat.Name)
	assert.Equal(t, 2, res.Chat.SkippedLines)

	persons, err := s.GetPersons(ctx, res.Chat.ID)
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Alice", persons[0].Name)
	assert.Equal(t, "Bob", persons[1].Name)

	msgs, err := s.GetMessages(ctx, types.MessageQuery{ChatID: res.Chat.ID})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, model.KindMedia, msgs[2].Kind)
	assert.Equal(t, persons[0].ID, msgs[2].PersonID)
}

func TestReparse_KeepsChatID(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	first, err := svc.Import(ctx, "chat.txt", strings.NewReader(export), svc.Defaults())
	require.NoError(t, err)
	assert.Equal(t, "Alice & Bob", first.Chat.Name)

	res, err := svc.Reparse(ctx, first.Chat.ID, parser.Options{Continuation: parser.JoinContinuation, DayFirst: true})
	require.NoError(t, err)
	assert.Equal(t, first.Chat.ID, res.Chat.ID)
	assert.Equal(t, 1, res.Skipped[string(parser.Continuation)])

	msgs, err := s.GetMessages(ctx, types.MessageQuery{ChatID: first.Chat.ID})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Hello Alice\nthis line continues", msgs[1].Text)

	_, err = svc.Reparse(ctx, 999, parser.DefaultOptions())
	assert.True(t, errors.Is(err, store.ErrChatNotFound))
}

func TestImport_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "notes.txt", strings.NewReader("nothing to see here\n"), svc.Defaults())
	assert.ErrorIs(t, err, ErrNoMessages)

	_, err = svc.Import(ctx, "photo.jpg", strings.NewReader("x"), svc.Defaults())
	assert.ErrorIs(t, err, importer.ErrUnsupportedFileType)
}

func TestImportFile(t *testing.T) {
	svc, _ := newService(t)
	path := filepath.Join(t.TempDir(), "WhatsApp Chat - Family.txt")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))

	res, err := svc.ImportFile(context.Background(), path, Options{ReplaceAll: true, Parser: parser.DefaultOptions()})
	require.NoError(t, err)
	assert.Equal(t, "Family", res.Chat.Name)
}

func TestChatName(t *testing.T) {
	assert.Equal(t, "Bob", ChatName("WhatsApp Chat with Bob.txt", "export.zip", nil))
	assert.Equal(t, "Team", ChatName("_chat.txt", "WhatsApp Chat - Team.zip", []string{"a", "b", "c"}))
	assert.Equal(t, "a & b", ChatName("_chat.txt", "export.zip", []string{"a", "b"}))
	assert.Equal(t, "export", ChatName("_chat.txt", "export.zip", []string{"a"}))
}
