package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-mfs/internal/diagnostics"
)

// Views select what the table format prints
const (
	ViewSummary = "summary"
	ViewFiles   = "files"
	ViewRecords = "records"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	fatalStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	advisoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Formatter renders responses
type Formatter struct {
	Out     io.Writer
	NoColor bool
}

// FormatOutput formats a response according to output format. view only
// affects the table format; json and yaml always carry the full response.
func (f *Formatter) FormatOutput(response *Response, format, view string) error {
	switch format {
	case "json":
		return f.formatJSON(response)
	case "yaml":
		return f.formatYAML(response)
	case "table":
		return f.formatTable(response, view)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (f *Formatter) formatTable(response *Response, view string) error {
	switch view {
	case ViewRecords:
		f.recordsTable(response)
	case ViewFiles:
		f.filesTable(response)
	default:
		f.summary(response)
		f.filesTable(response)
	}
	f.diagnosticsTable(response)
	return nil
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.NoColor {
		return s
	}
	return style.Render(s)
}

func (f *Formatter) summary(response *Response) {
	fmt.Fprintln(f.Out, f.render(headerStyle, "MFS image "+response.ImageID))
	fmt.Fprintf(f.Out, "Path:        %s\n", response.ImagePath)
	fmt.Fprintf(f.Out, "Input:       %s\n", response.Input)
	fmt.Fprintf(f.Out, "Generation:  %s (home %s, integrity %s, config %s)\n",
		response.Generation, response.Layout.Home, response.Layout.Integrity, response.Layout.Config)
	if v := response.Volume; v != nil {
		fmt.Fprintf(f.Out, "Volume:      %s, %s, %d file records\n", v.Signature, FormatSize(int64(v.Size)), v.FileRecordCount)
		fmt.Fprintf(f.Out, "Chunks:      %d system, %d data\n", v.SystemChunks, v.DataChunks)
		if v.FileTable {
			fmt.Fprintf(f.Out, "File Table:  platform %d, dictionary %d\n", v.Platform, v.Dictionary)
		}
	}
	if response.Pages.Total > 0 {
		fmt.Fprintf(f.Out, "Pages:       %d (%d system, %d data, %d scratch, %d CRC failures)\n",
			response.Pages.Total, response.Pages.System, response.Pages.Data, response.Pages.Scratch, response.Pages.CRCFailures)
	}

	c := response.Config
	fmt.Fprintf(f.Out, "Config:      intel=%t oem=%t home=%t file-table=%t populated=%v\n",
		c.IntelConfig, c.OEMConfig, c.HomeDirectory, c.FileTableMode, c.PopulatedFiles)
	if e := response.Export; e != nil {
		if e.OutputDir != "" {
			fmt.Fprintf(f.Out, "Exported:    %d files, %d directories, %s to %s\n", e.Files, e.Directories, FormatSize(e.Bytes), e.OutputDir)
		}
		if e.RecordDB != "" {
			fmt.Fprintf(f.Out, "Record DB:   %d records to %s\n", e.DBRecords, e.RecordDB)
		}
	}
	fmt.Fprintln(f.Out)
}

func (f *Formatter) filesTable(response *Response) {
	if len(response.Files) == 0 {
		fmt.Fprintln(f.Out, "No files reconstructed.")
		return
	}

	w := tabwriter.NewWriter(f.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PATH\tTYPE\tSIZE\tLLF\tMODE\tUID\tGID\tSVN\n")
	fmt.Fprintf(w, "----\t----\t----\t---\t----\t---\t---\t---\n")
	for _, file := range response.Files {
		llf, svn := "-", "-"
		if file.LowLevelIndex >= 0 {
			llf = fmt.Sprint(file.LowLevelIndex)
		}
		if file.Integrity {
			svn = fmt.Sprint(file.SVN)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			file.Path, file.Type, FormatSize(int64(file.Size)), llf, file.Mode, file.Owner, file.Group, svn)
	}
	w.Flush()
	fmt.Fprintf(f.Out, "\n%d files\n", len(response.Files))
}

func (f *Formatter) recordsTable(response *Response) {
	if len(response.Records) == 0 {
		fmt.Fprintln(f.Out, "No records visited.")
		return
	}

	w := tabwriter.NewWriter(f.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEQ\tSOURCE\tFOLDER\tNAME\tTYPE\tID\tMODE\tUID\tGID\n")
	fmt.Fprintf(w, "---\t------\t------\t----\t----\t--\t----\t---\t---\n")
	for _, r := range response.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			r.Sequence, r.Source, r.Folder, r.Name, r.Type, r.FileID, r.Mode, r.Owner, r.Group)
	}
	w.Flush()
	fmt.Fprintf(f.Out, "\n%d records\n", len(response.Records))
}

func (f *Formatter) diagnosticsTable(response *Response) {
	if len(response.Diagnostics) == 0 {
		return
	}
	fmt.Fprintln(f.Out)
	for _, d := range response.Diagnostics {
		label := fmt.Sprintf("%-8s", d.Severity)
		switch d.Severity {
		case diagnostics.SeverityFatal:
			label = f.render(fatalStyle, label)
		case diagnostics.SeverityAdvisory:
			label = f.render(advisoryStyle, label)
		default:
			label = f.render(infoStyle, label)
		}
		fmt.Fprintf(f.Out, "%s %-9s %s\n", label, d.Component, d.Message)
	}
	fmt.Fprintln(f.Out, FormatSummary(response))
}

func (f *Formatter) formatJSON(response *Response) error {
	encoder := json.NewEncoder(f.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func (f *Formatter) formatYAML(response *Response) error {
	encoder := yaml.NewEncoder(f.Out)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}

// FormatSummary provides a brief summary for verbose output
func FormatSummary(response *Response) string {
	parts := []string{fmt.Sprintf("%d files", len(response.Files))}
	for _, s := range []diagnostics.Severity{diagnostics.SeverityFatal, diagnostics.SeverityAdvisory, diagnostics.SeverityInfo} {
		if n := response.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(s.String())))
		}
	}
	return strings.Join(parts, ", ") + fmt.Sprintf(" in %v", response.Duration)
}
