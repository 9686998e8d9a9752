package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/engine/pkg/config"
	"github.com/agentcanvas/engine/pkg/models"
	"github.com/agentcanvas/engine/pkg/store"
)

const serviceDoc = `documentTitle: Customer Ops Canvas
agentGroups:
  - groupName: Discovery
    agents:
      - name: Intake Triage
        objective: Route inbound requests
        tools:
          - slack
  - groupName: Ops
    agents:
      - name: A
      - name: B
`

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "canvas.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	settings := config.DefaultSettings()
	settings.SearchDebounce = 10 * time.Millisecond
	svc := New(st, "canvas-1", settings, nil)
	t.Cleanup(svc.Close)
	return svc, st
}

func importDoc(t *testing.T, svc *Service) {
	t.Helper()
	require.NoError(t, svc.ImportDocument(context.Background(), []byte(serviceDoc)))
}

func TestImportPopulatesMirror(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	items := svc.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Intake Triage", items[0].Name)
	assert.Equal(t, "Discovery", items[0].Phase)
	assert.Equal(t, 0, items[0].PhaseOrder)
	assert.Equal(t, "Ops", items[1].Phase)
	assert.Equal(t, 1, items[1].PhaseOrder)
	assert.Equal(t, 0, items[1].ItemOrder)
	assert.Equal(t, 1, items[2].ItemOrder)
}

func TestExportPrefersOriginalDocument(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	out, err := svc.ExportDocument()
	require.NoError(t, err)
	assert.Equal(t, serviceDoc, string(out))
}

func TestExportRegeneratesWithoutOriginal(t *testing.T) {
	svc, st := newTestService(t)
	_, err := st.Create(context.Background(), &models.Item{
		CanvasID: "canvas-1",
		Name:     "Solo",
		Phase:    "Launch",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	out, err := svc.ExportDocument()
	require.NoError(t, err)
	assert.Contains(t, string(out), "groupName: Launch")
	assert.Contains(t, string(out), "name: Solo")
}

func TestGroupsByDefaultDimension(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	groups := svc.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Discovery", groups[0].Label)
	assert.Equal(t, "Ops", groups[1].Label)
	assert.Equal(t, 2, groups[1].ItemCount)
}

func TestFiltersAndQueryNarrowGroups(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	svc.SetQuery("intake")
	groups := svc.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Discovery", groups[0].Label)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "Intake Triage", groups[0].Items[0].Name)

	svc.SetQuery("")
	svc.SetFilters(map[string][]string{"phase": {"Ops"}})
	groups = svc.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Ops", groups[0].Label)
}

func TestQueryInputDebounces(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	results := make(chan []models.Group, 4)
	svc.OnRecompute = func(groups []models.Group) { results <- groups }

	// Rapid keystrokes: only the final query should ever be applied.
	svc.QueryInput("i")
	svc.QueryInput("in")
	svc.QueryInput("intake")

	select {
	case groups := <-results:
		require.Len(t, groups, 1)
		assert.Equal(t, "Discovery", groups[0].Label)
	case <-time.After(time.Second):
		t.Fatal("debounced recompute never fired")
	}
	select {
	case <-results:
		t.Fatal("superseded query produced a recompute")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEditSessionCommitWritesThrough(t *testing.T) {
	svc, st := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[0].ID

	sess, err := svc.OpenItemSession(itemID)
	require.NoError(t, err)

	form := sess.Form().Clone()
	form.Objective = "Triage faster"
	require.NoError(t, sess.SetForm(form))

	updated, err := svc.CommitItemSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Triage faster", updated.Objective)
	assert.Equal(t, "Triage faster", svc.Items()[0].Objective)

	stored, err := st.Get(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, "Triage faster", stored.Objective)
}

func TestEditSessionTextRoundTripKeepsNumber(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[2].ID // B, second in Ops

	sess, err := svc.OpenItemSession(itemID)
	require.NoError(t, err)
	require.NoError(t, sess.SwitchToText())
	require.NoError(t, sess.SetText("name: B renamed\n"))

	updated, err := svc.CommitItemSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "B renamed", updated.Name)
	assert.Equal(t, 1, updated.ItemOrder)
}

func TestNewItemSessionAppends(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	sess := svc.NewItemSession()
	form := sess.Form().Clone()
	form.Name = "Escalation Bot"
	require.NoError(t, sess.SetForm(form))

	created, err := svc.CommitItemSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "canvas-1", created.CanvasID)
	assert.Len(t, svc.Items(), 4)
}

func TestCommitValidationFailureLeavesSessionOpen(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[0].ID

	sess, err := svc.OpenItemSession(itemID)
	require.NoError(t, err)
	form := sess.Form().Clone()
	form.Name = "  "
	require.NoError(t, sess.SetForm(form))

	_, err = svc.CommitItemSession(context.Background())
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, sess.Closed())
	assert.Equal(t, "Intake Triage", svc.Items()[0].Name)
}

func TestCommitWithoutSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CommitItemSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCancelDropsSession(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	svc.NewItemSession()
	svc.CancelSession()
	_, err := svc.CommitItemSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDeleteItemSoftDeletes(t *testing.T) {
	svc, st := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[0].ID

	require.NoError(t, svc.DeleteItem(context.Background(), itemID))
	assert.Len(t, svc.Items(), 2)

	deleted, err := st.ListDeleted(context.Background(), "canvas-1")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, itemID, deleted[0].ID)
}

func TestOpenSessionUnknownItem(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	_, err := svc.OpenItemSession("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// failingStore forces every backend call to fail so mirror isolation is
// observable.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) List(context.Context, string) ([]models.Item, error) { return nil, f.err }
func (f *failingStore) Update(context.Context, string, store.ItemPatch) error {
	return f.err
}

func TestStoreFailureLeavesMirrorUntouched(t *testing.T) {
	svc, st := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[0].ID

	boom := errors.New("backend down")
	svc.store = &failingStore{Store: st, err: boom}

	assert.ErrorIs(t, svc.Refresh(context.Background()), boom)
	assert.Len(t, svc.Items(), 3)

	sess, err := svc.OpenItemSession(itemID)
	require.NoError(t, err)
	form := sess.Form().Clone()
	form.Objective = "never lands"
	require.NoError(t, sess.SetForm(form))

	_, err = svc.CommitItemSession(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, svc.Items()[0].Objective)
}

// Grouped reads must not observe in-place mirror writes from a concurrent
// commit; run with -race.
func TestGroupsConcurrentWithCommits(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[0].ID

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			sess, err := svc.OpenItemSession(itemID)
			if !assert.NoError(t, err) {
				return
			}
			form := sess.Form().Clone()
			form.Objective = "pass " + string(rune('a'+i%26))
			if !assert.NoError(t, sess.SetForm(form)) {
				return
			}
			if _, err = svc.CommitItemSession(context.Background()); !assert.NoError(t, err) {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			groups := svc.Groups()
			require.Len(t, groups, 2)
			return
		default:
			_ = svc.Groups()
		}
	}
}

func TestStoreFailureDropsSession(t *testing.T) {
	svc, st := newTestService(t)
	importDoc(t, svc)
	itemID := svc.Items()[0].ID

	boom := errors.New("backend down")
	svc.store = &failingStore{Store: st, err: boom}

	sess, err := svc.OpenItemSession(itemID)
	require.NoError(t, err)
	form := sess.Form().Clone()
	form.Objective = "never lands"
	require.NoError(t, sess.SetForm(form))

	_, err = svc.CommitItemSession(context.Background())
	require.ErrorIs(t, err, boom)

	// The failed commit consumed the session; a retry reports no session
	// open rather than a stale closed one.
	_, err = svc.CommitItemSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestImportBadDocumentLeavesState(t *testing.T) {
	svc, _ := newTestService(t)
	importDoc(t, svc)

	err := svc.ImportDocument(context.Background(), []byte("agentGroups:\n  - groupName: ''\n    agents: []\n"))
	require.Error(t, err)
	assert.Len(t, svc.Items(), 3)

	out, exportErr := svc.ExportDocument()
	require.NoError(t, exportErr)
	assert.Equal(t, serviceDoc, string(out))
}
