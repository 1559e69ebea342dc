package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"eduledger/internal/code"
	"eduledger/internal/revenue"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type services struct {
	codes   code.Service
	revenue revenue.Service
	close   func() error
}

type connector func(migrate bool) (*services, error)

func newRootCmd(open connector) *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Administrative tasks for the points ledger",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(open), newCodesCmd(open), newRevenueCmd(open))
	return root
}

// withServices opens the database for the duration of fn.
func withServices(open connector, migrate bool, fn func(*services) error) error {
	svc, err := open(migrate)
	if err != nil {
		return err
	}
	defer svc.close()
	return fn(svc)
}

func newMigrateCmd(open connector) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(open, true, func(*services) error {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newCodesCmd(open connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Issue, list and revoke redeemable codes",
	}

	var (
		kind     string
		points   int64
		lecturer int64
		count    int
		issuedBy int64
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a batch of codes",
		Example: `  ledgerctl codes issue --kind general --points 100 --count 50
  ledgerctl codes issue --kind specific --lecturer 7 --points 40 --count 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := code.IssueRequest{
				Kind:         code.Kind(kind),
				PointsAmount: points,
				Count:        count,
				IssuedBy:     issuedBy,
			}
			if lecturer > 0 {
				req.LecturerID = &lecturer
			}

			return withServices(open, false, func(svc *services) error {
				codes, err := svc.codes.Issue(cmd.Context(), req)
				if err != nil {
					return err
				}
				printCodes(cmd.OutOrStdout(), codes)
				return nil
			})
		},
	}
	issue.Flags().StringVar(&kind, "kind", string(code.KindGeneral), "code kind: general, specific or promo")
	issue.Flags().Int64Var(&points, "points", 0, "points each code is worth")
	issue.Flags().Int64Var(&lecturer, "lecturer", 0, "lecturer id for specific codes")
	issue.Flags().IntVar(&count, "count", 1, "number of codes to issue")
	issue.Flags().Int64Var(&issuedBy, "issued-by", 0, "admin user id recorded as issuer")
	_ = issue.MarkFlagRequired("points")

	var (
		onlyOpen bool
		limit    int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List codes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := code.Filter{Limit: limit}
			if onlyOpen {
				redeemed := false
				f.Redeemed = &redeemed
			}
			return withServices(open, false, func(svc *services) error {
				codes, err := svc.codes.List(cmd.Context(), f)
				if err != nil {
					return err
				}
				printCodes(cmd.OutOrStdout(), codes)
				return nil
			})
		},
	}
	list.Flags().BoolVar(&onlyOpen, "unredeemed", false, "only show codes that can still be redeemed")
	list.Flags().IntVar(&limit, "limit", 50, "maximum rows")

	revoke := &cobra.Command{
		Use:   "revoke <token>...",
		Short: "Delete unredeemed codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(open, false, func(svc *services) error {
				for _, token := range args {
					if err := svc.codes.Revoke(cmd.Context(), token); err != nil {
						return fmt.Errorf("revoke %s: %w", token, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", token)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(issue, list, revoke)
	return cmd
}

func newRevenueCmd(open connector) *cobra.Command {
	var (
		from, to string
		lecturer int64
		center   int64
	)
	cmd := &cobra.Command{
		Use:     "revenue",
		Short:   "Summarize attendance revenue for a date range",
		Example: "  ledgerctl revenue --from 2026-01-01 --to 2026-01-31 --lecturer 7",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(dateLayout, from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := time.Parse(dateLayout, to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			f := revenue.Filter{From: start, To: end.AddDate(0, 0, 1)}
			if lecturer > 0 {
				f.LecturerID = &lecturer
			}
			if center > 0 {
				f.CenterID = &center
			}

			return withServices(open, false, func(svc *services) error {
				sum, err := svc.revenue.Summarize(cmd.Context(), f)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), sum)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day inclusive, YYYY-MM-DD")
	cmd.Flags().Int64Var(&lecturer, "lecturer", 0, "restrict to one lecturer")
	cmd.Flags().Int64Var(&center, "center", 0, "restrict to one center")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printCodes(w io.Writer, codes []code.Code) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tKIND\tLECTURER\tPOINTS\tREDEEMED")
	for _, c := range codes {
		lecturer := "-"
		if c.LecturerID != nil {
			lecturer = fmt.Sprint(*c.LecturerID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", c.Token, c.Kind, lecturer, c.PointsAmount, c.Redeemed)
	}
	tw.Flush()
}

func printSummary(w io.Writer, sum *revenue.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LECTURER\tCENTER\tPAYMENT\tATTENDANCES\tSESSIONS SOLD\tAMOUNT")
	for _, r := range sum.Rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\n", r.LecturerID, r.CenterID, r.PaymentType, r.Attendances, r.SessionsSold, r.Amount)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\t\t%d\n", sum.TotalAttendances, sum.TotalAmount)
	tw.Flush()
}
