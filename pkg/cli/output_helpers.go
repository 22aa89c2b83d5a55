package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"looksee/internal/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMetadataTable(w io.Writer, records []domain.ColumnMetadata) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tROWS\tNULLS\tDISTINCT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			r.Name, r.DataType, r.TotalRows, r.NullCount, r.UniqueCount)
	}
	_ = tw.Flush()
}

func printDatasetsTable(w io.Writer, datasets []domain.Dataset) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLOCATION")
	for _, d := range datasets {
		fmt.Fprintf(tw, "%s\t%s\n", d.Name, d.Location)
	}
	_ = tw.Flush()
}
