package reconcile

import (
	"context"
	"testing"

	"profile-manager/feature/catalog"
	"profile-manager/feature/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory profile.Store whose Patch behaves like a JSON
// merge patch, matching the database primitive.
type memStore struct {
	docs    map[string]profile.Document
	patches int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]profile.Document{}}
}

func (s *memStore) Get(_ context.Context, username string) (profile.Document, error) {
	doc, ok := s.docs[username]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return doc, nil
}

func (s *memStore) Create(_ context.Context, doc profile.Document) error {
	if _, ok := s.docs[doc.Username()]; ok {
		return profile.ErrAlreadyExists
	}
	s.docs[doc.Username()] = doc
	return nil
}

func (s *memStore) Patch(_ context.Context, username string, patch profile.Document) error {
	doc, ok := s.docs[username]
	if !ok {
		return profile.ErrNotFound
	}
	mergeInto(doc, patch)
	s.patches++
	return nil
}

func (s *memStore) ScanAll(_ context.Context, fn func(username string, doc profile.Document) error) error {
	for username, doc := range s.docs {
		if err := fn(username, doc); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst, patch map[string]any) {
	for k, v := range patch {
		if pm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeInto(dm, pm)
				continue
			}
		}
		dst[k] = v
	}
}

// staticReader serves a fixed catalog snapshot.
type staticReader struct {
	snap catalog.Snapshot
}

func (r staticReader) ListThemes(context.Context) ([]string, error) {
	return r.snap.ThemeIDs(), nil
}

func (r staticReader) ListLevels(_ context.Context, themeID string) ([]string, error) {
	t, _ := r.snap.Theme(themeID)
	return t.Levels, nil
}

func (r staticReader) Snapshot(context.Context) (catalog.Snapshot, error) {
	return r.snap, nil
}

func testCatalog() catalog.Snapshot {
	return catalog.Snapshot{Themes: []catalog.Theme{
		{ID: "forest", Levels: []string{"clearing", "grove", "canopy"}},
		{ID: "ocean", Levels: []string{"shore", "reef"}},
	}}
}

func testIdentity() profile.Identity {
	return profile.Identity{Username: "alice", Email: "alice@example.com", SubjectID: "subj-1"}
}

func newTestEngine(store profile.Store, snap catalog.Snapshot, opts Options) *Engine {
	return New(store, staticReader{snap: snap}, opts, zap.NewNop())
}

func TestPlanAddsMissingFieldsWithDefaults(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{})
	ident := testIdentity()

	doc := profile.Document{
		profile.FieldUsername:    "alice",
		profile.FieldGamesPlayed: 7,
	}

	plan := e.Plan(doc, ident, testCatalog())

	assert.NotContains(t, plan.AddedFields, profile.FieldUsername)
	assert.NotContains(t, plan.AddedFields, profile.FieldGamesPlayed)

	assert.Equal(t, "alice@example.com", plan.FieldPatch[profile.FieldEmail])
	assert.Equal(t, "subj-1", plan.FieldPatch[profile.FieldSubjectID])
	assert.Equal(t, profile.AvatarURL("alice"), plan.FieldPatch[profile.FieldAvatar])
	assert.Equal(t, []any{}, plan.FieldPatch[profile.FieldFollowing])
	assert.Equal(t, []any{}, plan.FieldPatch[profile.FieldFollowers])
	assert.Equal(t, []any{}, plan.FieldPatch[profile.FieldLastPlayed])
	assert.Equal(t, 0, plan.FieldPatch[profile.FieldBestScore])
	assert.Equal(t, 0, plan.FieldPatch[profile.FieldBossesDefeated])
}

func TestPlanPreservesExistingValues(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{})

	doc := profile.Document{}
	for _, f := range RequiredFields {
		doc[f] = "untouched"
	}
	doc[profile.FieldGamesPlayed] = 42

	plan := e.Plan(doc, testIdentity(), testCatalog())

	assert.Empty(t, plan.AddedFields)
	assert.Empty(t, plan.FieldPatch)
	assert.Equal(t, 42, doc[profile.FieldGamesPlayed])
}

func TestPlanNewThemeUnlocksOnlyFirstLevel(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{})

	plan := e.Plan(profile.Document{}, testIdentity(), testCatalog())

	require.Contains(t, plan.ThemePatch, "forest")
	entry := plan.ThemePatch["forest"].(map[string]any)
	levels := entry["levels"].(map[string]any)
	assert.Equal(t, true, levels["clearing"])
	assert.Equal(t, false, levels["grove"])
	assert.Equal(t, false, levels["canopy"])
	assert.ElementsMatch(t, []string{"forest", "ocean"}, plan.AddedThemes)
}

func TestPlanLeavesExistingThemeAlone(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{})

	// The profile tracks forest but is missing the canopy level that was
	// added to the catalog later. Without the backfill option the entry
	// stays exactly as it is.
	doc := profile.Document{
		profile.FieldThemes: map[string]any{
			"forest": map[string]any{
				"levels": map[string]any{"clearing": true, "grove": true},
			},
		},
	}

	plan := e.Plan(doc, testIdentity(), testCatalog())

	assert.NotContains(t, plan.ThemePatch, "forest")
	assert.Contains(t, plan.ThemePatch, "ocean")
	assert.Equal(t, []string{"ocean"}, plan.AddedThemes)
	assert.Empty(t, plan.BackfilledLevels)
}

func TestPlanBackfillAddsMissingLevelsLocked(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{BackfillLevels: true})

	doc := profile.Document{
		profile.FieldThemes: map[string]any{
			"forest": map[string]any{
				"levels": map[string]any{"clearing": true, "grove": true},
			},
			"ocean": map[string]any{
				"levels": map[string]any{"shore": true, "reef": false},
			},
		},
	}

	plan := e.Plan(doc, testIdentity(), testCatalog())

	require.Contains(t, plan.ThemePatch, "forest")
	entry := plan.ThemePatch["forest"].(map[string]any)
	levels := entry["levels"].(map[string]any)
	// Backfilled levels are locked, even the ones early in catalog order.
	assert.Equal(t, map[string]any{"canopy": false}, levels)
	assert.Equal(t, []string{"forest/canopy"}, plan.BackfilledLevels)

	// Complete entries are not patched at all.
	assert.NotContains(t, plan.ThemePatch, "ocean")
}

func TestPlanNoopForCanonicalProfile(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, testCatalog(), Options{})

	doc, err := e.BuildInitial(context.Background(), testIdentity())
	require.NoError(t, err)

	plan := e.Plan(doc, testIdentity(), testCatalog())
	assert.True(t, plan.IsNoop())
}

func TestBuildInitialIsCanonical(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{})
	ident := profile.Identity{Username: "Bob", Email: "Bob@Example.com", SubjectID: "subj-2"}

	doc, err := e.BuildInitial(context.Background(), ident)
	require.NoError(t, err)

	for _, f := range RequiredFields {
		assert.Contains(t, doc, f)
	}
	assert.Equal(t, "bob", doc.Username())
	assert.Equal(t, "bob@example.com", doc.Email())
	assert.Equal(t, "subj-2", doc.SubjectID())
	assert.Equal(t, 0, doc.GamesPlayed())

	levels := doc.ThemeLevels("ocean")
	require.NotNil(t, levels)
	assert.Equal(t, true, levels["shore"])
	assert.Equal(t, false, levels["reef"])
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.docs["alice"] = profile.Document{
		profile.FieldUsername: "alice",
		profile.FieldEmail:    "alice@example.com",
	}
	e := newTestEngine(store, testCatalog(), Options{})

	res, err := e.Reconcile(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Writes)
	assert.NotEmpty(t, res.AddedFields)
	assert.ElementsMatch(t, []string{"forest", "ocean"}, res.AddedThemes)

	// A second run right after finds nothing to do.
	res, err = e.Reconcile(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Writes)
	assert.Empty(t, res.AddedFields)
	assert.Empty(t, res.AddedThemes)
	assert.Equal(t, 2, store.patches)
}

func TestReconcileSingleWriteForThemeOnlyDrift(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, testCatalog(), Options{})

	// Canonical against a one-theme catalog, then the catalog grows.
	old := catalog.Snapshot{Themes: testCatalog().Themes[:1]}
	doc, err := newTestEngine(store, old, Options{}).BuildInitial(context.Background(), testIdentity())
	require.NoError(t, err)
	store.docs["alice"] = doc

	res, err := e.Reconcile(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Writes)
	assert.Empty(t, res.AddedFields)
	assert.Equal(t, []string{"ocean"}, res.AddedThemes)

	// The pre-existing theme kept its progress.
	forest := store.docs["alice"].ThemeLevels("forest")
	assert.Equal(t, true, forest["clearing"])

	ocean := store.docs["alice"].ThemeLevels("ocean")
	assert.Equal(t, true, ocean["shore"])
	assert.Equal(t, false, ocean["reef"])
}

func TestReconcileUnknownProfile(t *testing.T) {
	e := newTestEngine(newMemStore(), testCatalog(), Options{})

	_, err := e.Reconcile(context.Background(), testIdentity())
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestBulkReconcileRestoresUsernameFromStoreKey(t *testing.T) {
	store := newMemStore()
	// A legacy document that predates the username field entirely. The row
	// key is the only place its name survives.
	store.docs["legacy"] = profile.Document{
		profile.FieldEmail: "legacy@example.com",
	}
	e := newTestEngine(store, testCatalog(), Options{})

	snap := testCatalog()
	err := store.ScanAll(context.Background(), func(username string, doc profile.Document) error {
		ident := profile.Identity{
			Username:  username,
			Email:     doc.Email(),
			SubjectID: doc.SubjectID(),
		}
		plan := e.Plan(doc, ident, snap)
		if plan.IsNoop() {
			return nil
		}
		_, err := e.Apply(context.Background(), username, plan)
		return err
	})
	require.NoError(t, err)

	doc := store.docs["legacy"]
	assert.Equal(t, "legacy", doc.Username())
	assert.Equal(t, "legacy@example.com", doc.Email())
	assert.Equal(t, profile.AvatarURL("legacy"), doc[profile.FieldAvatar])
}

func TestApplyCountsWrites(t *testing.T) {
	store := newMemStore()
	store.docs["alice"] = profile.Document{profile.FieldUsername: "alice"}
	e := newTestEngine(store, testCatalog(), Options{})

	writes, err := e.Apply(context.Background(), "alice", &Plan{})
	require.NoError(t, err)
	assert.Equal(t, 0, writes)

	writes, err = e.Apply(context.Background(), "alice", &Plan{
		FieldPatch: profile.Document{profile.FieldBestScore: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, writes)

	writes, err = e.Apply(context.Background(), "alice", &Plan{
		FieldPatch: profile.Document{profile.FieldAverageScore: 0},
		ThemePatch: map[string]any{"forest": map[string]any{"levels": map[string]any{"clearing": true}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, writes)
}
