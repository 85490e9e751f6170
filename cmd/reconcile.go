package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"profile-manager/core/config"
	"profile-manager/core/database"
	"profile-manager/core/logger"
	"profile-manager/core/storage"
	"profile-manager/feature/catalog"
	"profile-manager/feature/profile"
	"profile-manager/feature/profile/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile profiles command
	backfillLevels bool
	dryRunProfiles bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile stored profiles against the current catalog",
	Long: `Reconcile profiles to detect and repair missing fields and missing
theme entries, bringing every profile into the canonical shape.`,
}

// profilesReconcileCmd reconciles every stored profile in one pass.
var profilesReconcileCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Reconcile all profiles (report + optionally write)",
	Long: `Walk every stored profile and reconcile it against the current catalog
snapshot. Reports missing fields and missing theme entries per profile.

Examples:
  # Report only
  reconcile profiles --dry-run

  # Repair all profiles
  reconcile profiles

  # Repair and additionally backfill levels added to existing themes
  reconcile profiles --backfill-levels`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}

		store := profile.NewGormStore(db)
		reader := catalog.NewStorageReader(client, cfg.Storage.Bucket, cfg.Catalog.Prefix)

		opts := reconcile.Options{
			BackfillLevels: backfillLevels || cfg.Reconcile.BackfillLevels,
		}
		engine := reconcile.New(store, reader, opts, logg)

		ctx := context.Background()
		start := time.Now()

		snap, err := reader.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to load catalog snapshot: %w", err)
		}
		logg.Info("Catalog snapshot loaded", zap.Int("themes", len(snap.Themes)))

		var total, touched, fieldsAdded, themesAdded, levelsBackfilled int

		err = store.ScanAll(ctx, func(username string, doc profile.Document) error {
			total++

			// The row key is the identity anchor; the document's own username
			// field may be one of the fields the plan is about to restore.
			ident := profile.Identity{
				Username:  username,
				Email:     doc.Email(),
				SubjectID: doc.SubjectID(),
			}

			plan := engine.Plan(doc, ident, snap)
			if plan.IsNoop() {
				return nil
			}

			touched++
			fieldsAdded += len(plan.AddedFields)
			themesAdded += len(plan.AddedThemes)
			levelsBackfilled += len(plan.BackfilledLevels)

			if dryRunProfiles {
				logg.Info("Profile out of shape",
					zap.String("username", ident.Username),
					zap.Strings("missing_fields", plan.AddedFields),
					zap.Strings("missing_themes", plan.AddedThemes),
				)
				return nil
			}

			_, err := engine.Apply(ctx, ident.Username, plan)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("\nReconcile summary\n")
		fmt.Printf("  profiles scanned:  %d\n", total)
		fmt.Printf("  profiles touched:  %d\n", touched)
		fmt.Printf("  fields added:      %d\n", fieldsAdded)
		fmt.Printf("  themes added:      %d\n", themesAdded)
		fmt.Printf("  levels backfilled: %d\n", levelsBackfilled)
		fmt.Printf("  elapsed:           %s\n", time.Since(start).Round(time.Millisecond))
		if dryRunProfiles {
			fmt.Println("  (dry-run: no writes were issued)")
		}

		return nil
	},
}

func init() {
	profilesReconcileCmd.Flags().BoolVar(&backfillLevels, "backfill-levels", false,
		"also add catalog levels missing inside existing theme entries (locked)")
	profilesReconcileCmd.Flags().BoolVar(&dryRunProfiles, "dry-run", false,
		"report what would change without writing")

	reconcileCmd.AddCommand(profilesReconcileCmd)
	RootCmd.AddCommand(reconcileCmd)
}
