package adapters

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// WriterOutputAdapter renders result records in one of the supported
// formats to any writer.
type WriterOutputAdapter struct {
	Format string
	Out    io.Writer
}

func NewWriterOutputAdapter(format string, out io.Writer) (WriterOutputAdapter, error) {
	switch format {
	case FormatPlain, FormatJSON, FormatCSV:
		return WriterOutputAdapter{Format: format, Out: out}, nil
	default:
		return WriterOutputAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown output format: %s", format))
	}
}

func (a WriterOutputAdapter) Write(results []types.ResolutionResult) error {
	switch a.Format {
	case FormatJSON:
		return a.writeJSON(results)
	case FormatCSV:
		return a.writeCSV(results)
	default:
		return a.writePlain(results)
	}
}

func (a WriterOutputAdapter) writePlain(results []types.ResolutionResult) error {
	for _, result := range results {
		var line string
		if result.Succeeded() {
			line = fmt.Sprintf("%s -> %s\n", result.Purl, result.DownloadURL)
		} else {
			line = fmt.Sprintf("%s -> ERROR: %s\n", result.Purl, errorMessage(result))
		}
		if _, err := io.WriteString(a.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func (a WriterOutputAdapter) writeJSON(results []types.ResolutionResult) error {
	encoder := json.NewEncoder(a.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func (a WriterOutputAdapter) writeCSV(results []types.ResolutionResult) error {
	writer := csv.NewWriter(a.Out)
	if err := writer.Write([]string{"purl", "download_url", "status", "method"}); err != nil {
		return err
	}
	for _, result := range results {
		record := []string{result.Purl, result.DownloadURL, string(result.Status), string(result.Method)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func errorMessage(result types.ResolutionResult) string {
	if result.Err != nil {
		return result.Err.Message
	}
	return "resolution failed"
}

var _ ports.OutputPort = WriterOutputAdapter{}
