package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/corector/internal/app"
	authmw "github.com/mind-engage/corector/internal/auth/middleware"
	"github.com/mind-engage/corector/internal/config"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/records"
	"github.com/mind-engage/corector/internal/stats"
	syncx "github.com/mind-engage/corector/internal/sync"
)

func recordsCmd(cfg *config.Config) *cobra.Command {
	var student string
	var latest bool
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List rows from the OCR sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rd, err := app.OpenRecords(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			if latest {
				rec, err := rd.LatestFor(cmd.Context(), student)
				if err != nil {
					return err
				}
				if rec == nil {
					return errors.New("sheet has no rows")
				}
				return printJSON(cmd.OutOrStdout(), rec)
			}
			var list []records.ExternalRecord
			if student != "" {
				list, err = rd.ForStudent(cmd.Context(), student)
			} else {
				list, err = rd.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&student, "student", "", "only rows for this student")
	cmd.Flags().BoolVar(&latest, "latest", false, "print only the newest matching row")
	return cmd
}

func statsCmd(cfg *config.Config) *cobra.Command {
	var (
		source  string
		owner   string
		student string
		n       int
	)
	cmd := &cobra.Command{
		Use:       "stats {students|classes|dates|errors|mistakes}",
		Short:     "Aggregate scores and mistakes",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"students", "classes", "dates", "errors", "mistakes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []stats.Entry
			switch source {
			case "records":
				rd, err := app.OpenRecords(cmd.Context(), *cfg)
				if err != nil {
					return err
				}
				recs, err := rd.All(cmd.Context())
				if err != nil {
					return err
				}
				entries = stats.FromRecords(recs)
			case "sessions":
				store, dbh, err := app.OpenStore(cmd.Context(), *cfg)
				if err != nil {
					return err
				}
				if dbh != nil {
					defer dbh.Close()
				}
				list, err := store.ListSessions(cmd.Context(), correction.ListOpts{OwnerID: owner})
				if err != nil {
					return err
				}
				entries = stats.FromSessions(list)
			default:
				return fmt.Errorf("unknown source %q", source)
			}
			if student != "" {
				kept := entries[:0:0]
				for _, e := range entries {
					if grading.SameName(e.StudentName, student) {
						kept = append(kept, e)
					}
				}
				entries = kept
			}

			switch args[0] {
			case "students":
				return printJSON(cmd.OutOrStdout(), stats.Students(entries, n))
			case "classes":
				return printJSON(cmd.OutOrStdout(), stats.ByClass(entries))
			case "dates":
				return printJSON(cmd.OutOrStdout(), stats.ByDate(entries))
			case "errors":
				return printJSON(cmd.OutOrStdout(), stats.ErrorsByCategory(entries))
			default:
				return printJSON(cmd.OutOrStdout(), stats.TopMistakes(entries, n))
			}
		},
	}
	cmd.Flags().StringVar(&source, "source", "records", "records or sessions")
	cmd.Flags().StringVar(&owner, "owner", "", "teacher id for session stats (empty for all)")
	cmd.Flags().StringVar(&student, "student", "", "restrict to one student")
	cmd.Flags().IntVarP(&n, "top", "n", stats.DefaultTopN, "how many mistakes to list")
	return cmd
}

func migrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it is missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DBDriver == "memory" {
				return errors.New("memory driver has no schema")
			}
			_, dbh, err := app.OpenStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer dbh.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}

func eventsCmd(cfg *config.Config) *cobra.Command {
	var (
		after int64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List CorrectionCompleted events from the event log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, dbh, err := app.OpenStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			if dbh == nil {
				return errors.New("memory driver keeps no event log")
			}
			defer dbh.Close()
			evs, err := syncx.NewEventRepo(dbh, "").List(cmd.Context(), after, limit)
			if err != nil {
				return err
			}
			if evs == nil {
				evs = []syncx.Event{}
			}
			return printJSON(cmd.OutOrStdout(), evs)
		},
	}
	cmd.Flags().Int64Var(&after, "after", 0, "only events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum events to print")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for TEACHER_ACCOUNTS or ADMIN_PASS_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := authmw.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
