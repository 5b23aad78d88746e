package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	postgresadapter "ballotbox/contexts/elections/voting-core/adapters/postgres"
	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/application/queries"
	"ballotbox/internal/app/bootstrap"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/db"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the voting schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := config.FromContext(cmd.Context())
			database, err := db.Connect(db.Options{
				Driver:  cfg.DatabaseDriver,
				DSN:     cfg.DSN(),
				Tracing: cfg.DBTracing,
			})
			if err != nil {
				return err
			}
			defer database.Close()
			if err := postgresadapter.AutoMigrate(database.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema migrated (%s)\n", database.Driver)
			return nil
		},
	}
}

func ballotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ballot",
		Short: "Manage ballot definitions",
	}
	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load a ballot definition from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ballot, err := readBallotFile(file, time.Now().UTC())
			if err != nil {
				return err
			}
			return withCore(cmd, func(core *bootstrap.Core) error {
				if err := core.Repository.SaveBallot(cmd.Context(), ballot); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ballot %s saved for election %s (%d options)\n",
					ballot.BallotID, ballot.ElectionID, len(ballot.Options))
				return nil
			})
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "ballot definition file")
	_ = importCmd.MarkFlagRequired("file")
	cmd.AddCommand(importCmd)
	return cmd
}

func issueTokensCommand() *cobra.Command {
	var (
		electionID string
		emails     []string
		count      int
		expiry     time.Duration
		issuedBy   string
	)
	cmd := &cobra.Command{
		Use:   "issue-tokens",
		Short: "Issue one-time voter tokens for an election",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, func(core *bootstrap.Core) error {
				result, err := core.Module.Handler.Issue.Execute(cmd.Context(), commands.IssueTokensCommand{
					ElectionID: electionID,
					Recipients: emails,
					Count:      count,
					ExpiresIn:  expiry,
					IssuedBy:   issuedBy,
				})
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "RECIPIENT\tTOKEN")
				for _, item := range result.Tokens {
					recipient := item.Recipient
					if recipient == "" {
						recipient = "-"
					}
					fmt.Fprintf(w, "%s\t%s\n", recipient, item.RawToken)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "issued %d tokens, expiring %s\n",
					len(result.Tokens), result.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&electionID, "election", "e", "", "election id")
	cmd.Flags().StringSliceVar(&emails, "emails", nil, "recipient addresses, one token each")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "anonymous token count when no emails are given")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (default from config)")
	cmd.Flags().StringVar(&issuedBy, "issued-by", "ballotctl", "organizer recorded in logs")
	_ = cmd.MarkFlagRequired("election")
	return cmd
}

func checkTokenCommand() *cobra.Command {
	var electionID, token string
	cmd := &cobra.Command{
		Use:   "check-token",
		Short: "Report whether a token can still be used",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, func(core *bootstrap.Core) error {
				result, err := core.Module.Handler.Check.Execute(cmd.Context(), queries.CheckTokenQuery{
					RawToken:   token,
					ElectionID: electionID,
				})
				if err != nil {
					return err
				}
				if result.Valid {
					fmt.Fprintln(cmd.OutOrStdout(), "valid")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", result.Reason)
				return result.Err()
			})
		},
	}
	cmd.Flags().StringVarP(&electionID, "election", "e", "", "election id")
	cmd.Flags().StringVarP(&token, "token", "t", "", "raw voter token")
	_ = cmd.MarkFlagRequired("election")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func tallyCommand() *cobra.Command {
	var (
		electionID string
		ballotID   string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Count the votes recorded for a ballot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, func(core *bootstrap.Core) error {
				result, err := core.Module.Handler.Tally.Execute(cmd.Context(), queries.TallyQuery{
					ElectionID: electionID,
					BallotID:   ballotID,
				})
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(result.AsMap())
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "%s (%s)\t%d votes\n", result.BallotTitle, result.BallotType, result.TotalVotes)
				for _, item := range result.Counts {
					label := strings.TrimSpace(item.Text)
					if label == "" {
						label = item.OptionID
					}
					fmt.Fprintf(w, "  %s\t%d\n", label, item.Count)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&electionID, "election", "e", "", "election id")
	cmd.Flags().StringVarP(&ballotID, "ballot", "b", "", "ballot id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print option counts as a JSON object")
	_ = cmd.MarkFlagRequired("election")
	_ = cmd.MarkFlagRequired("ballot")
	return cmd
}
