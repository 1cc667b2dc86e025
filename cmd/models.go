package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"drone-detect/domain/detection"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available detection models",
	Long: `List the bundled aerial-object detection models.

The selected model is read from the detection.model config entry, or
overridden per run with 'detect --model'.`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

var modelDescriptions = map[detection.Model]string{
	detection.ModelDroneNetLite: "Small, fast drone detector",
	detection.ModelDroneNetFull: "Larger, more accurate drone detector",
	detection.ModelAerialSSD:    "General aerial-object SSD (drones, birds, aircraft)",
}

func runModels(cmd *cobra.Command, args []string) error {
	return RunModelsWithDependencies(GetConfig().Detection.Model, os.Stdout)
}

// RunModelsWithDependencies runs the models command with injected dependencies
func RunModelsWithDependencies(configured string, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tDESCRIPTION\tSELECTED")
	for _, m := range detection.Models() {
		selected := ""
		if string(m) == configured {
			selected = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m, modelDescriptions[m], selected)
	}
	return w.Flush()
}

// modelNames returns the model identifiers as plain strings
func modelNames() []string {
	models := detection.Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = string(m)
	}
	return names
}
