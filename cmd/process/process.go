package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/divVerent/rmakers/internal/file"
	"github.com/divVerent/rmakers/internal/score"
)

var (
	c           string
	i           string
	o           string
	addChecksum bool
	saveState   bool
)

var rootCmd = &cobra.Command{
	Use:   "process",
	Short: "Makes rhythms for the divisions of an options file",
	Long: `Reads the maker definition from the config file and the divisions, or a
MIDI file to take them from, from the options file, and writes the rhythms
one division per line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Main()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&c, "config", "c", "rmakers.yml", "config file name (YAML)")
	rootCmd.Flags().StringVarP(&i, "input", "i", "", "input file name (YAML)")
	rootCmd.Flags().StringVarP(&o, "output", "o", "", "output file name (default: stdout)")
	rootCmd.Flags().BoolVar(&addChecksum, "add_checksum", false, "automatically add checksum to the input YAML")
	rootCmd.Flags().BoolVar(&saveState, "save_state", false, "store the state after this run as previous_state in the input YAML")
	rootCmd.MarkFlagRequired("input")
}

func Main() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %v", err)
	}
	fsys := os.DirFS(cwd)

	config, err := file.ReadConfig(fsys, c)
	if err != nil {
		return fmt.Errorf("failed to read config: %v", err)
	}

	options, err := file.ReadOptions(fsys, i)
	if err != nil {
		return fmt.Errorf("failed to read options: %v", err)
	}

	hadChecksum := options.InputFileSHA256 != ""

	output, err := file.Process(fsys, config, options)
	if err != nil {
		return fmt.Errorf("failed to process: %v", err)
	}

	var w io.Writer = os.Stdout
	header := o == "" && term.IsTerminal(int(os.Stdout.Fd()))
	if o != "" {
		f, err := os.Create(o)
		if err != nil {
			return fmt.Errorf("failed to create %v: %v", o, err)
		}
		defer f.Close()
		w = f
	}
	if header {
		divs := make([]string, len(output.Divisions))
		for k, d := range output.Divisions {
			divs[k] = d.String()
		}
		fmt.Fprintf(w, "%% %s: %s\n%% state: %v\n", i, strings.Join(divs, " "), output.State)
	}
	if _, err := fmt.Fprintln(w, score.FormatSelections(output.Selections)); err != nil {
		return fmt.Errorf("failed to write output: %v", err)
	}

	rewrite := false
	if !hadChecksum && addChecksum && options.InputFileSHA256 != "" {
		rewrite = true
	}
	if !hadChecksum && !rewrite {
		options.InputFileSHA256 = ""
	}
	if saveState {
		options.PreviousState = &output.State
		rewrite = true
	}
	if rewrite {
		err := file.WriteOptions(i, options)
		if err != nil {
			return fmt.Errorf("failed to write %v: %v", i, err)
		}
	}

	return nil
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
