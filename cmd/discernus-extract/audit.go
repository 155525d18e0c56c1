package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discernus/discernus-sub017/internal/audit"
	"github.com/discernus/discernus-sub017/internal/utils"
)

var errNoAuditDB = errors.New("no audit database: set --audit-db or DISCERNUS_AUDIT_DB")

func (a *app) auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the extraction audit log",
	}

	var list audit.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print recorded extractions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openAudit(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), list)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if _, err := fmt.Fprintln(a.stdout, utils.JSONToString(e)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&list.FailedOnly, "failed", false, "only failed extractions")
	listCmd.Flags().IntVar(&list.Limit, "limit", 20, "maximum entries, 0 for all")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openAudit(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, utils.JSONToString(st, true))
			return err
		},
	}

	cmd.AddCommand(listCmd, statsCmd)
	return cmd
}

func (a *app) openAudit(cmd *cobra.Command) (*audit.Store, error) {
	if a.auditDB == "" {
		return nil, errNoAuditDB
	}
	return audit.Open(cmd.Context(), a.auditDB)
}
