package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteTXT writes the dashed-block layout the capture client also uses for
// its local files.
func WriteTXT(w io.Writer, name string, createdAt time.Time, rows []Row) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, separator)
	fmt.Fprintf(bw, "Capture file: %s\n", name)
	fmt.Fprintf(bw, "Created the: %s\n", createdAt.Format(longDateLayout))
	fmt.Fprintln(bw, separator)

	for _, r := range rows {
		fmt.Fprintf(bw, "Value:%s\n", r.Value)
		fmt.Fprintf(bw, "Symbology:%s\n", r.SymbologyName)
		fmt.Fprintf(bw, "Quantity:%d\n", r.Quantity)
		fmt.Fprintf(bw, "Capture Date:%s\n", r.ScannedAt.Format(longDateLayout))
		fmt.Fprintln(bw, separator)
	}

	return bw.Flush()
}

// WriteCSV writes ';' separated rows under the Date;Symbology;Data;Quantity header.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ScannedAt.Format(timeLayout),
			r.SymbologyName,
			r.Value,
			strconv.Itoa(r.Quantity),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
