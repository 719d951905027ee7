package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MeKo-Tech/tilecrop/internal/tiling"
	"github.com/spf13/cobra"
)

// planCmd represents the plan command.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the tiling plan for an image size",
	Long: `Show how an image of the given size would be tiled without touching any
files: the resized canvas, the stride and the patch grid.

Examples:
  tilecrop plan --width 4000 --height 3000 --patch-width 640 --patch-height 640
  tilecrop plan --width 1000 --height 500 --patch-width 256 --patch-height 256 --overlap-ratio 0.25 --cells
  tilecrop plan --width 1000 --height 500 --patch-width 256 --patch-height 256 --format json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPlanCommand,
}

type planCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
	X0  int `json:"x0"`
	Y0  int `json:"y0"`
	X1  int `json:"x1"`
	Y1  int `json:"y1"`
}

type planOutput struct {
	tiling.Plan
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells []planCell `json:"cells,omitempty"`
}

func runPlanCommand(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	width, _ := flags.GetInt("width")
	height, _ := flags.GetInt("height")
	format, _ := flags.GetString("format")
	withCells, _ := flags.GetBool("cells")

	cfg := GetConfig()
	patchWidth, patchHeight, overlap := cfg.Tiling.PatchWidth, cfg.Tiling.PatchHeight, cfg.Tiling.OverlapRatio
	if flags.Changed("patch-width") {
		patchWidth, _ = flags.GetInt("patch-width")
	}
	if flags.Changed("patch-height") {
		patchHeight, _ = flags.GetInt("patch-height")
	}
	if flags.Changed("overlap-ratio") {
		overlap, _ = flags.GetFloat64("overlap-ratio")
	}

	plan, err := tiling.NewPlan(width, height, patchWidth, patchHeight, overlap)
	if err != nil {
		return err
	}
	return writePlan(cmd.OutOrStdout(), plan, format, withCells)
}

func writePlan(w io.Writer, plan tiling.Plan, format string, withCells bool) error {
	switch format {
	case "json":
		out := planOutput{Plan: plan, Rows: plan.Rows(), Cols: plan.Cols()}
		if withCells {
			for _, c := range plan.Cells() {
				out.Cells = append(out.Cells, planCell{
					Row: c.Row, Col: c.Col,
					X0: c.Rect.X0, Y0: c.Rect.Y0, X1: c.Rect.X1, Y1: c.Rect.Y1,
				})
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text", "":
		if _, err := fmt.Fprintln(w, plan.String()); err != nil {
			return err
		}
		if withCells {
			for _, c := range plan.Cells() {
				if _, err := fmt.Fprintf(w, "%d_%d\t%d,%d\t%dx%d\n",
					c.Row, c.Col, c.Rect.X0, c.Rect.Y0, c.Rect.Width(), c.Rect.Height()); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Int("width", 0, "source image width in pixels")
	planCmd.Flags().Int("height", 0, "source image height in pixels")
	planCmd.Flags().Int("patch-width", 0, "patch width in pixels (default from config)")
	planCmd.Flags().Int("patch-height", 0, "patch height in pixels (default from config)")
	planCmd.Flags().Float64("overlap-ratio", 0.5, "fraction of a patch shared with its neighbour, in [0, 1)")
	planCmd.Flags().String("format", "text", "output format (text, json)")
	planCmd.Flags().Bool("cells", false, "list every grid cell")

	_ = planCmd.MarkFlagRequired("width")
	_ = planCmd.MarkFlagRequired("height")
}
