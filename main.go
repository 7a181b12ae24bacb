package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/interpolate"
	"github.com/divVerent/rmakers/internal/meter"
	"github.com/divVerent/rmakers/internal/score"
	"github.com/divVerent/rmakers/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "rmakers",
	Short: "Inspects the building blocks of the rhythm makers",
}

var (
	curve    string
	written  string
	increase bool
	roundDen int64
)

var interpolateCmd = &cobra.Command{
	Use:   "interpolate total start stop",
	Short: "Divides a total duration into an accelerando or ritardando",
	Long: `Divides total into durations moving from start to stop along the curve,
rounds them to exact durations and prints each as a written duration with a
multiplier. All arguments are durations like 5/8.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ds [3]duration.Duration
		for k, a := range args {
			d, err := duration.Parse(a)
			if err != nil {
				return err
			}
			if d.Sign() <= 0 {
				return fmt.Errorf("%v is not positive", d)
			}
			ds[k] = d
		}
		c, err := interpolate.ParseCurve(curve)
		if err != nil {
			return err
		}
		w, err := duration.Parse(written)
		if err != nil {
			return err
		}
		if w.Sign() <= 0 {
			return fmt.Errorf("written duration %v is not positive", w)
		}
		if roundDen <= 0 {
			return fmt.Errorf("denominator %d is not positive", roundDen)
		}
		values, err := interpolate.Divide(ds[0].Float64(), ds[1].Float64(), ds[2].Float64(), c)
		if err != nil {
			return err
		}
		exact, err := interpolate.Exact(values, ds[0], roundDen)
		if err != nil {
			return err
		}
		parts := make([]string, len(exact))
		for k, d := range exact {
			parts[k] = fmt.Sprintf("%v*%v", score.WrittenString(w), d.Div(w))
		}
		fmt.Printf("%s (%v)\n", strings.Join(parts, " "), interpolate.Classify(exact))
		return nil
	},
}

var meterCmd = &cobra.Command{
	Use:   "meter pair-or-tree",
	Short: "Prints the beat hierarchy and offsets of a meter",
	Long: `Prints the rhythm tree of a time signature like 7/8, or of a rhythm tree
like "(5/8 ((2/8 (1/8 1/8)) (3/8 (1/8 1/8 1/8))))", and its offsets by depth.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var m meter.Meter
		if strings.HasPrefix(strings.TrimSpace(args[0]), "(") {
			var err error
			m, err = meter.Parse(args[0])
			if err != nil {
				return err
			}
		} else {
			pair, err := duration.ParseDivision(args[0])
			if err != nil {
				return err
			}
			if pair.Num <= 0 {
				return fmt.Errorf("%v is not positive", pair)
			}
			m = meter.New(pair, increase)
		}
		fmt.Println(m)
		for depth, offsets := range m.DepthwiseOffsets() {
			parts := make([]string, len(offsets))
			for k, o := range offsets {
				parts[k] = o.String()
			}
			fmt.Printf("%d: %s\n", depth, strings.Join(parts, " "))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version())
	},
}

func init() {
	interpolateCmd.Flags().StringVar(&curve, "curve", "cosine", `"cosine" or an exponent`)
	interpolateCmd.Flags().StringVar(&written, "written", "1/16", "written duration the multipliers apply to")
	interpolateCmd.Flags().Int64Var(&roundDen, "denominator", 1024, "denominator to round durations to")
	meterCmd.Flags().BoolVar(&increase, "increase_monotonic", false, "group odd numerators as 2+...+3 instead of 3+...+2")
	rootCmd.AddCommand(interpolateCmd, meterCmd, versionCmd)
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
