package pipeline

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// WriteReport renders the accuracy tables: one row per fold with one column
// per kernel, then mean and standard deviation, then the held-out scores.
func WriteReport(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Descriptor: %s (%d features), %d training images, %d folds\n\n",
		r.Descriptor, r.Features, r.Samples, len(r.CV.Folds))

	fmt.Fprintf(tw, "fold\ttrain\tvalidation\t%s\n", strings.Join(r.CV.Kernels, "\t"))
	for _, f := range r.CV.Folds {
		fmt.Fprintf(tw, "%d\t%d\t%d", f.Fold, f.Train, f.Validation)
		for _, acc := range f.Accuracy {
			fmt.Fprintf(tw, "\t%.2f", acc)
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprint(tw, "mean\t\t")
	for _, k := range r.CV.Kernels {
		fmt.Fprintf(tw, "\t%.2f", r.CV.Mean(k))
	}
	fmt.Fprint(tw, "\nstd\t\t")
	for _, k := range r.CV.Kernels {
		fmt.Fprintf(tw, "\t%.2f", r.CV.Std(k))
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "\nHeld-out (%d per class, last fold models)\n", r.Holdout)
	fmt.Fprintln(tw, "kernel\tcorrect\ttotal\taccuracy")
	for _, s := range r.HeldOut {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\n", s.Kernel, s.Correct, s.Total, s.Accuracy)
	}

	fmt.Fprintf(tw, "\nElapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	return tw.Flush()
}
