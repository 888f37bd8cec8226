package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize/english"

	"github.com/me/roadmap/pkg/model"
)

// printSchedule renders the assignment table in task order.
func printSchedule(out io.Writer, plan *model.Plan, sched *model.Schedule) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tENGINEER\tSTART\tEND\tDAYS\tMILESTONE")
	for _, a := range sched.Assignments {
		engineer := a.EngineerID
		if a.Completed {
			engineer = "(done)"
		}
		days := fmt.Sprintf("%d", a.EffortDays)
		if a.Estimated {
			days += "?"
		}
		if a.ZeroEffort {
			days = "-"
		}
		title := a.TaskID
		if t := plan.Task(a.TaskID); t != nil && t.Title != "" {
			title = t.Title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			title, engineer, a.Start, a.End, days, a.Milestone)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%s scheduled, %s through %s\n",
		english.Plural(len(sched.Assignments), "task", ""),
		sched.Start, sched.EndDate())
}

func printScore(out io.Writer, sc model.Score, milestones int) {
	// Lateness is measured in calendar days past the deadline; makespan
	// counts working days only.
	fmt.Fprintf(out, "deadlines met: %d of %d, total lateness: %s, makespan: %s\n",
		sc.DeadlinesMet, milestones,
		english.Plural(sc.TotalLateness, "day", ""),
		english.Plural(sc.MakespanDays, "working day", ""))
}

func printRisks(out io.Writer, risks []model.DeadlineRisk) {
	for _, r := range risks {
		switch r.Level {
		case "late":
			fmt.Fprintf(out, "LATE: %s (%s) ends %s, past the %s deadline %s\n",
				r.TaskID, r.Milestone, r.End, r.Milestone, r.Deadline)
		default:
			fmt.Fprintf(out, "at risk: %s (%s) ends %s, past the freeze %s\n",
				r.TaskID, r.Milestone, r.End, r.Freeze)
		}
	}
}
