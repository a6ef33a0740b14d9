package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/remind/internal/store"
)

func setupTestStore(t *testing.T) *store.TaskStore {
	t.Helper()

	logger := log.New(io.Discard)
	repo, err := store.NewJSONFile(filepath.Join(t.TempDir(), "tasks.json"), logger)
	require.NoError(t, err)
	s, err := store.Open(context.Background(), repo, "default", logger)
	require.NoError(t, err)
	return s
}

func TestImport(t *testing.T) {
	s := setupTestStore(t)
	doc := `
tasks:
  - title: File taxes
    description: federal and state
    deadline: 2026-04-15
  - title: Renew passport
    deadline: "2026-11-01"
    owner: alice
`
	n, err := Import(context.Background(), s, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tasks, err := s.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "File taxes", tasks[0].Title)
	assert.Equal(t, "federal and state", tasks[0].Description)
	assert.Equal(t, "2026-04-15", tasks[0].Deadline)
	assert.Equal(t, "default", tasks[0].OwnerOr(""))
	assert.Equal(t, "alice", tasks[1].OwnerOr(""))
	assert.False(t, tasks[1].Completed)
}

func TestImportRejectsWholeDocument(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "blank title",
			doc:   "tasks:\n  - title: ok\n    deadline: 2026-10-20\n  - title: '   '\n    deadline: 2026-10-21\n",
			field: "tasks[1].title",
		},
		{
			name:  "ideographic space title",
			doc:   "tasks:\n  - title: first\n    deadline: 2026-10-20\n  - title: \"\\u3000\"\n    deadline: 2026-10-21\n",
			field: "tasks[1].title",
		},
		{
			name:  "no-break space title",
			doc:   "tasks:\n  - title: first\n    deadline: 2026-10-20\n  - title: \"\\u00a0 \"\n    deadline: 2026-10-21\n",
			field: "tasks[1].title",
		},
		{
			name:  "next-line title",
			doc:   "tasks:\n  - title: first\n    deadline: 2026-10-20\n  - title: \"\\u0085\"\n    deadline: 2026-10-21\n",
			field: "tasks[1].title",
		},
		{
			name:  "invalid date",
			doc:   "tasks:\n  - title: ok\n    deadline: 2026-10-20\n  - title: bad\n    deadline: 2025-13-40\n",
			field: "tasks[1].deadline",
		},
		{
			name:  "missing deadline",
			doc:   "tasks:\n  - title: no date\n",
			field: "tasks[0].deadline",
		},
		{
			name:  "no tasks",
			doc:   "tasks: []\n",
			field: "tasks",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestStore(t)

			n, err := Import(context.Background(), s, []byte(tt.doc))
			require.Error(t, err)
			assert.Zero(t, n)

			var ve *store.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)

			tasks, err := s.List(context.Background(), "")
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})
	}
}

func TestImportRejectsUnknownKeys(t *testing.T) {
	s := setupTestStore(t)

	_, err := Import(context.Background(), s, []byte("tasks:\n  - title: x\n    deadline: 2026-10-20\n    tags: [a]\n"))
	assert.ErrorContains(t, err, "YAML parse error")
}

func TestImportEmptyDocument(t *testing.T) {
	s := setupTestStore(t)

	_, err := Import(context.Background(), s, nil)
	var ve *store.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tasks", ve.Field)
}

func TestImportFile(t *testing.T) {
	s := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks:\n  - title: from file\n    deadline: 2026-12-24\n"), 0o644))

	n, err := ImportFile(context.Background(), s, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = ImportFile(context.Background(), s, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "document", fieldPath(""))
	assert.Equal(t, "tasks", fieldPath("/tasks"))
	assert.Equal(t, "tasks[3].owner", fieldPath("/tasks/3/owner"))
}
