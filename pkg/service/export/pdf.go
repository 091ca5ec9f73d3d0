package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
)

const (
	// fallbackFont only covers cp1252. Other characters are printed as '?'.
	fallbackFont = "Helvetica"
	unicodeFont  = "report"

	pageMargin   = 15.0
	matrixSizeMM = 120.0
	axisLabelMM  = 8.0
)

// PDFOptions controls report rendering
type PDFOptions struct {
	GeneratedAt time.Time
	// Placer lays out the matrix. A seeded placer keeps reports reproducible.
	Placer *matrix.Placer
	// FontPath is a TrueType font embedded for full Unicode text. Without
	// it the core Helvetica font is used.
	FontPath string
}

type pdfWriter struct {
	pdf  *fpdf.Fpdf
	font string
	tr   func(string) string
}

// WritePDF renders the full project report
func WritePDF(w io.Writer, p *model.Project, opts PDFOptions) error {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	if opts.Placer == nil {
		opts.Placer = matrix.New()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(p.Name+" risk report", true)
	pdf.SetCreator("riskpilot", true)

	pw := &pdfWriter{pdf: pdf, font: fallbackFont, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if opts.FontPath != "" {
		pdf.AddUTF8Font(unicodeFont, "", opts.FontPath)
		pdf.AddUTF8Font(unicodeFont, "B", opts.FontPath)
		if err := pdf.Error(); err != nil {
			return goerr.Wrap(err, "failed to load PDF font", goerr.V("path", opts.FontPath))
		}
		pw.font = unicodeFont
		pw.tr = func(s string) string { return s }
	}

	risks := sortedRisks(p.Risks)

	pw.titlePage(p, opts.GeneratedAt)
	pw.summary(risks)
	pw.drawMatrix(opts.Placer.Place(risks))
	pw.riskTable(risks)
	pw.details(risks)

	if err := pdf.Output(w); err != nil {
		return goerr.Wrap(err, "failed to render PDF", goerr.V("project_id", p.ID))
	}
	return nil
}

// sortedRisks orders by score descending then title
func sortedRisks(risks []*model.Risk) []*model.Risk {
	sorted := make([]*model.Risk, 0, len(risks))
	for _, r := range risks {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score() != sorted[j].Score() {
			return sorted[i].Score() > sorted[j].Score()
		}
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

func (w *pdfWriter) heading(text string) {
	w.pdf.SetFont(w.font, "B", 14)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.CellFormat(0, 10, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.Ln(2)
}

func (w *pdfWriter) body(size float64) {
	w.pdf.SetFont(w.font, "", size)
	w.pdf.SetTextColor(0, 0, 0)
}

func (w *pdfWriter) titlePage(p *model.Project, generatedAt time.Time) {
	w.pdf.AddPage()
	w.pdf.SetFont(w.font, "B", 22)
	w.pdf.Ln(30)
	w.pdf.MultiCell(0, 11, w.tr(p.Name), "", "C", false)
	w.pdf.SetFont(w.font, "", 14)
	w.pdf.CellFormat(0, 10, "Risk Assessment Report", "", 1, "C", false, 0, "")
	w.pdf.Ln(6)

	w.body(11)
	if p.Description != "" {
		w.pdf.MultiCell(0, 6, w.tr(p.Description), "", "C", false)
		w.pdf.Ln(6)
	}
	w.pdf.CellFormat(0, 7, "Generated: "+generatedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	if p.OwnerEmail != "" {
		w.pdf.CellFormat(0, 7, w.tr("Owner: "+p.OwnerEmail), "", 1, "C", false, 0, "")
	}

	if len(p.Team) > 0 {
		w.pdf.Ln(8)
		w.pdf.SetFont(w.font, "B", 12)
		w.pdf.CellFormat(0, 8, "Team", "", 1, "C", false, 0, "")
		w.body(10)
		for _, m := range p.Team {
			w.pdf.CellFormat(0, 6, w.tr(fmt.Sprintf("%s (%s)", m.Email, m.Role)), "", 1, "C", false, 0, "")
		}
	}
}

func (w *pdfWriter) summary(risks []*model.Risk) {
	w.pdf.AddPage()
	w.heading("Summary")

	counts := make(map[types.Priority]int)
	statuses := make(map[types.RiskStatus]int)
	for _, r := range risks {
		counts[r.Priority()]++
		statuses[r.Status]++
	}

	w.body(11)
	w.pdf.CellFormat(0, 7, fmt.Sprintf("Total risks: %d", len(risks)), "", 1, "L", false, 0, "")
	w.pdf.Ln(2)

	for _, prio := range types.AllPriorities() {
		r, g, b := prio.RGB()
		w.pdf.SetFillColor(r, g, b)
		w.pdf.Rect(w.pdf.GetX(), w.pdf.GetY()+1.5, 4, 4, "F")
		w.pdf.SetX(w.pdf.GetX() + 6)
		w.pdf.CellFormat(40, 7, strings.ToUpper(string(prio)), "", 0, "L", false, 0, "")
		w.pdf.CellFormat(20, 7, fmt.Sprintf("%d", counts[prio]), "", 1, "R", false, 0, "")
	}

	w.pdf.Ln(4)
	for _, s := range types.AllRiskStatuses() {
		w.pdf.CellFormat(46, 7, strings.ToUpper(string(s)), "", 0, "L", false, 0, "")
		w.pdf.CellFormat(20, 7, fmt.Sprintf("%d", statuses[s]), "", 1, "R", false, 0, "")
	}
}

// drawMatrix draws the grid with cell shading by priority and one dot per risk,
// scaling the placement layout into the page
func (w *pdfWriter) drawMatrix(layout *matrix.Layout) {
	w.pdf.Ln(8)
	w.heading("Risk Matrix")

	if w.pdf.GetY()+matrixSizeMM+2*axisLabelMM > 297-pageMargin {
		w.pdf.AddPage()
	}

	originX := pageMargin + axisLabelMM + 4
	originY := w.pdf.GetY()
	scale := matrixSizeMM / layout.Width
	cell := layout.CellSize * scale

	w.pdf.SetDrawColor(200, 200, 200)
	w.pdf.SetLineWidth(0.2)
	for row := 0; row < matrix.GridSize; row++ {
		for col := 0; col < matrix.GridSize; col++ {
			probability := types.Score(matrix.GridSize - row)
			impact := types.Score(col + 1)
			r, g, b := types.CalculatePriority(probability, impact).RGB()
			w.pdf.SetFillColor(lighten(r), lighten(g), lighten(b))
			w.pdf.Rect(originX+float64(col)*cell, originY+float64(row)*cell, cell, cell, "FD")
		}
	}

	w.pdf.SetDrawColor(255, 255, 255)
	for _, pt := range layout.Points {
		r, g, b := pt.Priority.RGB()
		w.pdf.SetFillColor(r, g, b)
		w.pdf.Circle(originX+pt.X*scale, originY+pt.Y*scale, layout.PointRadius*scale, "FD")
	}

	w.body(8)
	for i := 0; i < matrix.GridSize; i++ {
		w.pdf.Text(originX+float64(i)*cell+cell/2-1, originY+matrixSizeMM+4, fmt.Sprintf("%d", i+1))
		w.pdf.Text(originX-5, originY+float64(i)*cell+cell/2+1, fmt.Sprintf("%d", matrix.GridSize-i))
	}
	w.pdf.SetFont(w.font, "B", 9)
	w.pdf.Text(originX+matrixSizeMM/2-6, originY+matrixSizeMM+axisLabelMM+2, "Impact")
	w.pdf.TransformBegin()
	w.pdf.TransformRotate(90, pageMargin+2, originY+matrixSizeMM/2+8)
	w.pdf.Text(pageMargin+2, originY+matrixSizeMM/2+8, "Probability")
	w.pdf.TransformEnd()

	w.pdf.SetY(originY + matrixSizeMM + axisLabelMM + 6)
}

func lighten(c int) int {
	return c + (255-c)*3/5
}

var tableColumns = []struct {
	title string
	width float64
}{
	{"Title", 70},
	{"Category", 25},
	{"P", 10},
	{"I", 10},
	{"Score", 14},
	{"Priority", 20},
	{"Status", 20},
}

func (w *pdfWriter) riskTable(risks []*model.Risk) {
	w.pdf.AddPage()
	w.heading("Risk Register")

	header := func() {
		w.pdf.SetFont(w.font, "B", 9)
		w.pdf.SetFillColor(230, 230, 230)
		for _, c := range tableColumns {
			w.pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
		}
		w.pdf.Ln(-1)
	}
	header()

	w.body(9)
	for _, r := range risks {
		if w.pdf.GetY() > 297-pageMargin-10 {
			w.pdf.AddPage()
			header()
			w.body(9)
		}
		title := r.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		values := []string{
			title,
			string(r.Category),
			fmt.Sprintf("%d", r.Probability),
			fmt.Sprintf("%d", r.Impact),
			fmt.Sprintf("%d", r.Score()),
			string(r.Priority()),
			string(r.Status),
		}
		for i, c := range tableColumns {
			align := "C"
			if i == 0 {
				align = "L"
			}
			fill := false
			if i == 5 {
				cr, cg, cb := r.Priority().RGB()
				w.pdf.SetFillColor(lighten(cr), lighten(cg), lighten(cb))
				fill = true
			}
			w.pdf.CellFormat(c.width, 6, w.tr(values[i]), "1", 0, align, fill, 0, "")
		}
		w.pdf.Ln(-1)
	}
}

func (w *pdfWriter) details(risks []*model.Risk) {
	for _, r := range risks {
		if r.Mitigation.IsEmpty() && len(r.Solutions) == 0 && r.Description == "" {
			continue
		}
		w.pdf.AddPage()
		w.heading(r.Title)

		w.body(10)
		w.pdf.CellFormat(0, 6, fmt.Sprintf("Category: %s   Probability: %d   Impact: %d   Priority: %s   Status: %s",
			r.Category, r.Probability, r.Impact, r.Priority(), r.Status), "", 1, "L", false, 0, "")
		if r.Assignee != "" {
			w.pdf.CellFormat(0, 6, w.tr("Assignee: "+r.Assignee), "", 1, "L", false, 0, "")
		}
		if r.Description != "" {
			w.pdf.Ln(2)
			w.pdf.MultiCell(0, 5, w.tr(r.Description), "", "L", false)
		}

		if m := r.Mitigation; !m.IsEmpty() {
			w.subheading("Mitigation Strategy")
			if m.Overview != "" {
				w.pdf.MultiCell(0, 5, w.tr(m.Overview), "", "L", false)
			}
			for _, role := range m.ResponsibleRoles {
				w.bullet(role.Role + ": " + strings.Join(role.Responsibilities, ", "))
			}
			for _, phase := range m.Timeline {
				w.bullet(fmt.Sprintf("%s (%s): %s", phase.Phase, phase.Duration, strings.Join(phase.Activities, ", ")))
			}
			w.list("Resources", m.Resources)
			w.list("Success metrics", m.SuccessMetrics)
			for _, c := range m.Costs {
				w.bullet("Cost - " + c.Item + ": " + c.Amount)
			}
			w.list("Challenges", m.Challenges)
		}

		if len(r.Solutions) > 0 {
			w.subheading("Solutions")
			for i, s := range r.Solutions {
				w.pdf.SetFont(w.font, "B", 10)
				w.pdf.MultiCell(0, 6, w.tr(fmt.Sprintf("%d. %s", i+1, s.Title)), "", "L", false)
				w.body(10)
				if s.Description != "" {
					w.pdf.MultiCell(0, 5, w.tr(s.Description), "", "L", false)
				}
				for j, step := range s.Steps {
					w.bullet(fmt.Sprintf("Step %d: %s", j+1, step))
				}
				meta := []string{}
				if s.EstimatedCost != "" {
					meta = append(meta, "Cost: "+s.EstimatedCost)
				}
				if s.Timeline != "" {
					meta = append(meta, "Timeline: "+s.Timeline)
				}
				if s.Effectiveness != "" {
					meta = append(meta, "Effectiveness: "+s.Effectiveness)
				}
				if len(meta) > 0 {
					w.pdf.MultiCell(0, 5, w.tr(strings.Join(meta, "   ")), "", "L", false)
				}
				w.pdf.Ln(2)
			}
		}
	}
}

func (w *pdfWriter) subheading(text string) {
	w.pdf.Ln(4)
	w.pdf.SetFont(w.font, "B", 12)
	w.pdf.CellFormat(0, 8, w.tr(text), "", 1, "L", false, 0, "")
	w.body(10)
}

func (w *pdfWriter) bullet(text string) {
	w.pdf.SetX(pageMargin + 4)
	w.pdf.MultiCell(0, 5, w.tr("- "+text), "", "L", false)
}

func (w *pdfWriter) list(label string, items []string) {
	if len(items) == 0 {
		return
	}
	w.pdf.SetFont(w.font, "B", 10)
	w.pdf.CellFormat(0, 6, w.tr(label), "", 1, "L", false, 0, "")
	w.body(10)
	for _, item := range items {
		w.bullet(item)
	}
}
