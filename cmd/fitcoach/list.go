package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/pkg/listquery"
)

const dateFormat = "2006-01-02 15:04"

type listFlags struct {
	search string
	status string
	client string
	sort   string
	order  string
	page   int
	size   int
}

func (f *listFlags) bind(cmd *cobra.Command, withClient bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.search, "search", "", "free-text search")
	flags.StringVar(&f.status, "status", listquery.StatusAll, "status filter")
	flags.StringVar(&f.sort, "sort", "", "sort field")
	flags.StringVar(&f.order, "order", "asc", "sort order, asc or desc")
	flags.IntVar(&f.page, "page", 1, "page number, starting at 1")
	flags.IntVar(&f.size, "size", listquery.DefaultPageSize, "page size")
	if withClient {
		flags.StringVar(&f.client, "client", "", "only workouts of this client id")
	}
}

func (f listFlags) query(sortFields []string) (listquery.Query, error) {
	if f.page < 1 {
		return listquery.Query{}, fmt.Errorf("--page must be at least 1")
	}
	if f.size < 1 {
		return listquery.Query{}, fmt.Errorf("--size must be at least 1")
	}
	if f.sort != "" && !slices.Contains(sortFields, f.sort) {
		return listquery.Query{}, fmt.Errorf("unsupported sort field %q (use one of %s)", f.sort, strings.Join(sortFields, ", "))
	}
	order := strings.ToLower(f.order)
	if order != "asc" && order != "desc" {
		return listquery.Query{}, fmt.Errorf("--order must be asc or desc")
	}
	return listquery.NewQuery(f.size).
		WithSearch(f.search).
		WithStatus(strings.ToLower(f.status)).
		WithOwner(f.client).
		WithSort(f.sort, order).
		WithPage(f.page - 1), nil
}

func newClientsCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query(models.ClientSortFields)
			if err != nil {
				return err
			}
			records, source := a.loadClients(cmd.Context())
			printClients(a.out, listquery.Apply(records, q, models.SortClients), source)
			return nil
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func newWorkoutsCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query(models.WorkoutSortFields)
			if err != nil {
				return err
			}
			records, source := a.loadWorkouts(cmd.Context())
			printWorkouts(a.out, listquery.Apply(records, q, models.SortWorkouts), source)
			return nil
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func printClients(w io.Writer, res listquery.Result[models.Client], source string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tSTATUS\tPROGRAM\tLAST ACTIVE")
	for _, c := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Email, c.Status, c.ProgramType, formatOptional(c.LastActive))
	}
	_ = tw.Flush()
	printFooter(w, res.Page, res.PageCount, res.Total, source)
}

func printWorkouts(w io.Writer, res listquery.Result[models.Workout], source string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCLIENT\tSCHEDULED\tSTATUS\tEXERCISES")
	for _, wk := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", wk.Title, wk.ClientName, wk.ScheduledFor.Format(dateFormat), wk.Status(), len(wk.Exercises))
	}
	_ = tw.Flush()
	printFooter(w, res.Page, res.PageCount, res.Total, source)
}

func printFooter(w io.Writer, page, pages, total int, source string) {
	if pages == 0 {
		fmt.Fprintf(w, "no matches (source: %s)\n", source)
		return
	}
	fmt.Fprintf(w, "page %d of %d, %d total (source: %s)\n", page+1, pages, total, source)
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateFormat)
}
