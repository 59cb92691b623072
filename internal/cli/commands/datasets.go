package commands

import (
	"fmt"
	"strings"

	"github.com/dailyflow/dailyflow/internal/cli/output"
	"github.com/dailyflow/dailyflow/internal/ingest"
	"github.com/dailyflow/dailyflow/internal/ingest/contract"
	"github.com/spf13/cobra"
)

// DatasetInfo describes one registered dataset.
type DatasetInfo struct {
	Name       string   `json:"name"`
	SourceType string   `json:"source_type"`
	Required   []string `json:"required"`
	Optional   []string `json:"optional"`
	ScoreRange [2]int   `json:"score_range"`
	Sheets     []string `json:"sheets,omitempty"`
}

// NewDatasetsCommand creates the datasets command.
func NewDatasetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets that can be ingested",
		Long:  `List every registered dataset with its source format and column contract.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)
			return renderDatasets(cmdCtx.Renderer)
		},
	}
}

func renderDatasets(r *output.Renderer) error {
	names := ingest.Names()
	infos := make([]DatasetInfo, 0, len(names))
	for _, name := range names {
		c, err := ingest.Lookup(name)
		if err != nil {
			return err
		}
		infos = append(infos, datasetInfo(c))
	}
	if handled, err := r.Document(infos); handled {
		return err
	}

	r.Header(1, fmt.Sprintf("Datasets (%d)", len(infos)))
	rows := make([][]any, 0, len(infos))
	for _, d := range infos {
		rows = append(rows, []any{
			d.Name,
			d.SourceType,
			strings.Join(d.Required, ", "),
			strings.Join(d.Optional, ", "),
			fmt.Sprintf("%d..%d", d.ScoreRange[0], d.ScoreRange[1]),
		})
	}
	r.Table([]string{"Name", "Source", "Required", "Optional", "Scores"}, rows)
	return nil
}

func datasetInfo(c contract.Contract) DatasetInfo {
	return DatasetInfo{
		Name:       c.Name,
		SourceType: string(c.SourceType),
		Required:   c.Required,
		Optional:   c.Optional,
		ScoreRange: [2]int{c.ScoreMin, c.ScoreMax},
		Sheets:     c.Sheets,
	}
}
