package reconcile

import (
	"context"
	"fmt"

	"profile-manager/feature/catalog"
	"profile-manager/feature/profile"

	"go.uber.org/zap"
)

// RequiredFields is the canonical top-level field set of a profile document,
// excluding the themes map (catalog completion owns that).
var RequiredFields = []string{
	profile.FieldUsername,
	profile.FieldEmail,
	profile.FieldSubjectID,
	profile.FieldFollowing,
	profile.FieldFollowers,
	profile.FieldAvatar,
	profile.FieldBestScore,
	profile.FieldAverageScore,
	profile.FieldGamesPlayed,
	profile.FieldBossesDefeated,
	profile.FieldThemesCompleted,
	profile.FieldLastPlayed,
}

// Options controls reconcile behavior.
type Options struct {
	// BackfillLevels adds levels missing inside pre-existing theme entries
	// (always locked). Off by default: an already-migrated profile keeps
	// exactly the level set it had when its theme entry was created.
	BackfillLevels bool
}

// Plan is the computed diff between one profile document and the canonical
// shape. An empty plan means the profile is already canonical.
type Plan struct {
	// FieldPatch holds the missing required fields with their defaults.
	FieldPatch profile.Document
	// ThemePatch holds the missing theme entries (and backfilled levels),
	// keyed by theme id.
	ThemePatch map[string]any

	// AddedFields lists the field names in FieldPatch.
	AddedFields []string
	// AddedThemes lists the theme ids newly inserted.
	AddedThemes []string
	// BackfilledLevels lists backfilled levels as "themeID/levelID".
	BackfilledLevels []string
}

// IsNoop reports whether the plan contains no changes.
func (p *Plan) IsNoop() bool {
	return len(p.FieldPatch) == 0 && len(p.ThemePatch) == 0
}

// Result reports what a reconciliation changed.
type Result struct {
	AddedFields      []string
	AddedThemes      []string
	BackfilledLevels []string
	// Writes is the number of store write operations issued (0, 1 or 2).
	Writes int
}

// Engine computes and applies profile reconciliation plans.
type Engine struct {
	store   profile.Store
	catalog catalog.Reader
	opts    Options
	logger  *zap.Logger
}

// New creates a reconciliation engine.
func New(store profile.Store, reader catalog.Reader, opts Options, logger *zap.Logger) *Engine {
	return &Engine{store: store, catalog: reader, opts: opts, logger: logger}
}

// defaultFor computes the default value of a missing required field.
func defaultFor(field string, ident profile.Identity) any {
	switch field {
	case profile.FieldFollowing, profile.FieldFollowers, profile.FieldLastPlayed:
		return []any{}
	case profile.FieldAvatar:
		return profile.AvatarURL(ident.Username)
	case profile.FieldUsername:
		return ident.Username
	case profile.FieldEmail:
		return ident.Email
	case profile.FieldSubjectID:
		return ident.SubjectID
	default:
		// Every remaining required field is a numeric counter.
		return 0
	}
}

// newThemeEntry builds the levels map for a theme entry created for the first
// time: the first level in catalog order unlocked, every other level locked.
func newThemeEntry(t catalog.Theme) map[string]any {
	levels := make(map[string]any, len(t.Levels))
	for i, id := range t.Levels {
		levels[id] = i == 0
	}
	return map[string]any{"levels": levels}
}

// Plan compares a document against the snapshot and computes the minimal
// patches. It is a pure function of its inputs and performs no I/O.
func (e *Engine) Plan(doc profile.Document, ident profile.Identity, snap catalog.Snapshot) *Plan {
	plan := &Plan{
		FieldPatch: profile.Document{},
		ThemePatch: map[string]any{},
	}

	// Field completion: only absent keys get a default, whatever the
	// present values are.
	for _, field := range RequiredFields {
		if _, ok := doc[field]; !ok {
			plan.FieldPatch[field] = defaultFor(field, ident)
			plan.AddedFields = append(plan.AddedFields, field)
		}
	}

	// Catalog completion: themes already present are left untouched.
	themes := doc.Themes()
	for _, t := range snap.Themes {
		if _, ok := themes[t.ID]; !ok {
			plan.ThemePatch[t.ID] = newThemeEntry(t)
			plan.AddedThemes = append(plan.AddedThemes, t.ID)
			continue
		}

		if !e.opts.BackfillLevels {
			continue
		}

		levels := doc.ThemeLevels(t.ID)
		missing := map[string]any{}
		for _, lvl := range t.Levels {
			if _, ok := levels[lvl]; !ok {
				// Backfilled levels are never unlocked; first-unlock only
				// applies to entries created whole.
				missing[lvl] = false
				plan.BackfilledLevels = append(plan.BackfilledLevels, t.ID+"/"+lvl)
			}
		}
		if len(missing) > 0 {
			plan.ThemePatch[t.ID] = map[string]any{"levels": missing}
		}
	}

	return plan
}

// Apply issues the plan's patches for the given username: at most two writes,
// zero for a no-op plan.
func (e *Engine) Apply(ctx context.Context, username string, plan *Plan) (int, error) {
	writes := 0

	if len(plan.FieldPatch) > 0 {
		if err := e.store.Patch(ctx, username, plan.FieldPatch); err != nil {
			return writes, fmt.Errorf("failed to complete fields: %w", err)
		}
		writes++
	}

	if len(plan.ThemePatch) > 0 {
		patch := profile.Document{profile.FieldThemes: plan.ThemePatch}
		if err := e.store.Patch(ctx, username, patch); err != nil {
			return writes, fmt.Errorf("failed to complete themes: %w", err)
		}
		writes++
	}

	return writes, nil
}

// Reconcile brings the stored profile into canonical shape. It can run any
// number of times; a second run immediately after a successful one performs
// zero writes.
func (e *Engine) Reconcile(ctx context.Context, ident profile.Identity) (*Result, error) {
	ident = ident.Normalize()

	doc, err := e.store.Get(ctx, ident.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	snap, err := e.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	plan := e.Plan(doc, ident, snap)

	writes, err := e.Apply(ctx, ident.Username, plan)
	if err != nil {
		return nil, err
	}

	if writes > 0 {
		e.logger.Info("Profile reconciled",
			zap.String("username", ident.Username),
			zap.Strings("added_fields", plan.AddedFields),
			zap.Strings("added_themes", plan.AddedThemes),
			zap.Int("writes", writes),
		)
	}

	return &Result{
		AddedFields:      plan.AddedFields,
		AddedThemes:      plan.AddedThemes,
		BackfilledLevels: plan.BackfilledLevels,
		Writes:           writes,
	}, nil
}

// BuildInitial computes the full canonical profile document for a brand-new
// identity: every required field at its default plus a theme entry for every
// catalog theme with its first level unlocked. The caller persists it with a
// single create.
func (e *Engine) BuildInitial(ctx context.Context, ident profile.Identity) (profile.Document, error) {
	ident = ident.Normalize()

	snap, err := e.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	doc := profile.Document{}
	for _, field := range RequiredFields {
		doc[field] = defaultFor(field, ident)
	}

	themes := make(map[string]any, len(snap.Themes))
	for _, t := range snap.Themes {
		themes[t.ID] = newThemeEntry(t)
	}
	doc[profile.FieldThemes] = themes

	return doc, nil
}
