package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyplanner/core/internal/adapters/repository"
	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/backup"
	"github.com/studyplanner/core/internal/ports"
)

// NewDataCommand creates the data command for inspecting the stored schedule
func NewDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect or reset the schedule document",
	}

	dataCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the schedule document as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store ports.DocumentStore) error {
				doc, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}
				data, err := repository.EncodeDocument(doc)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	})

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove all tasks and classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			keepSubjects, _ := cmd.Flags().GetBool("keep-subjects")
			if !yes {
				return errors.New("refusing to reset without --yes")
			}

			return withStore(func(store ports.DocumentStore) error {
				return store.Update(cmd.Context(), func(doc *entities.Document) (bool, error) {
					subjects := doc.Subjects
					*doc = *entities.NewDocument()
					if keepSubjects {
						doc.Subjects = subjects
					}
					return true, nil
				})
			})
		},
	}
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
	resetCmd.Flags().Bool("keep-subjects", true, "Keep the subject colours")
	dataCmd.AddCommand(resetCmd)

	return dataCmd
}

// NewBackupCommand creates the backup command
func NewBackupCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Schedule document snapshots",
	}

	backupCmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Write a snapshot to the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Close()

			store, err := repository.NewStore(cfg, appLogger, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			backups, err := backup.New(store, cfg.Backup, appLogger)
			if err != nil {
				return err
			}

			path, err := backups.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return backupCmd
}

func withStore(fn func(store ports.DocumentStore) error) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	store, err := repository.NewStore(cfg, appLogger, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}
