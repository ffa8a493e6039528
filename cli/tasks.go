package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"progressboard/engine"
)

type taskFlags struct {
	status string
	unit   string
	search string
	sort   string
	desc   bool
	sample bool
}

func tasksCmd(a *app) *cobra.Command {
	f := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks, optionally filtered and sorted",
		Example: `  progressboard tasks --status in_progress --unit PV06
  progressboard tasks --search "dữ liệu" --sort progress --desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := engine.ParseStatusFilter(f.status)
			if err != nil {
				return err
			}
			field, err := engine.ParseSortField(f.sort)
			if err != nil {
				return err
			}
			if _, err := a.loadTasks(cmd.Context(), f.sample); err != nil {
				return err
			}

			a.store.SetStatusFilter(status)
			a.store.SetUnitFilter(f.unit)
			st := a.store.SetSearchTerm(f.search)

			renderTasks(a.out, engine.SortTasks(st.FilteredTasks, field, f.desc))
			renderSync(a.out, st.SaveTime, len(st.FilteredTasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "status: not_started, in_progress, done, paused or a sheet label")
	cmd.Flags().StringVarP(&f.unit, "unit", "u", "", "exact unit")
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "case-insensitive text in title, unit or note")
	cmd.Flags().StringVar(&f.sort, "sort", "id", "sort by id, name, unit, progress or status")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&f.sample, "sample", false, "use the built-in sample data")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show status counts, overall progress and progress per unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadTasks(cmd.Context(), sample)
			if err != nil {
				return err
			}
			renderStats(a.out, st.Stats, engine.StatusDistribution(st.Tasks), engine.ProgressByUnit(st.Tasks))
			renderSync(a.out, st.SaveTime, len(st.Tasks))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "use the built-in sample data")
	return cmd
}

func unitsCmd(a *app) *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "units",
		Short: "List the units that appear in the task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadTasks(cmd.Context(), sample)
			if err != nil {
				return err
			}
			for _, u := range engine.Units(st.Tasks) {
				fmt.Fprintln(a.out, u)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "use the built-in sample data")
	return cmd
}

func timelineCmd(a *app) *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Count tasks and completions per end-date month",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadTasks(cmd.Context(), sample)
			if err != nil {
				return err
			}
			renderTimeline(a.out, engine.MonthlyTimeline(st.Tasks))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "use the built-in sample data")
	return cmd
}
