package layout

import (
	"errors"
	"math"

	"github.com/lvillar/docsmith/fonts"
)

// ErrNoColumns is returned when a table has neither column definitions nor cells.
var ErrNoColumns = errors.New("layout: table has no columns")

// Table is a fluent table builder that lays its cells out into a Flow.
type Table struct {
	flow        *Flow
	columns     []ColumnDef
	rows        []*Row
	headerRows  int
	style       TableStyle
	placeholder *Row
}

// NewTable creates a table that will render at the flow's cursor, spanning its width.
func NewTable(f *Flow) *Table {
	return &Table{
		flow: f,
		style: TableStyle{
			CellPadding: UniformPadding(8),
		},
	}
}

// SetColumns sets column definitions for the table.
func (t *Table) SetColumns(cols ...ColumnDef) *Table {
	t.columns = cols
	return t
}

// SetColumnWidths is a convenience method to set column widths directly.
// A width of 0 means the column will auto-fill remaining space.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.columns = make([]ColumnDef, len(widths))
	for i, w := range widths {
		t.columns[i] = ColumnDef{Width: w}
	}
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// SetPlaceholder sets the text of the single row shown when the table has no
// body rows. The cell spans every column.
func (t *Table) SetPlaceholder(text string, style CellStyle) *Table {
	r := &Row{}
	r.AddCell(text).SetStyle(style)
	t.placeholder = r
	return t
}

// AddRow adds a new data row to the table and returns it for chaining.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// AddHeaderRow adds a new header row and returns it for chaining.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	insertIdx := 0
	for i, existing := range t.rows {
		if !existing.isHeader {
			insertIdx = i
			break
		}
		insertIdx = i + 1
	}
	t.rows = append(t.rows, nil)
	copy(t.rows[insertIdx+1:], t.rows[insertIdx:])
	t.rows[insertIdx] = r
	t.headerRows++
	return r
}

// BodyRows returns the number of non-header rows.
func (t *Table) BodyRows() int { return len(t.rows) - t.headerRows }

// MustRender is like Render but panics when the table has no columns.
func (t *Table) MustRender() {
	if err := t.Render(); err != nil {
		panic(err)
	}
}

// Render lays the table out and advances the flow below it.
func (t *Table) Render() error {
	widths := t.calculateWidths()
	if len(widths) == 0 {
		return ErrNoColumns
	}

	var headerRows, bodyRows []*Row
	for _, r := range t.rows {
		if r.isHeader {
			headerRows = append(headerRows, r)
		} else {
			bodyRows = append(bodyRows, r)
		}
	}
	if len(bodyRows) == 0 && t.placeholder != nil {
		t.placeholder.cells[0].colspan = len(widths)
		bodyRows = []*Row{t.placeholder}
	}

	top := t.flow.Y
	var outline int
	if t.style.Outline != nil {
		outline = t.flow.c.Add(Node{Kind: BoxNode})
	}

	for _, r := range headerRows {
		t.renderRow(r, widths, -1, true)
	}
	for i, r := range bodyRows {
		t.renderRow(r, widths, i, false)
	}

	if t.style.Outline != nil {
		t.flow.c.Update(outline, Node{
			Kind:        BoxNode,
			Rect:        Rect{X: t.flow.X, Y: top, W: t.flow.W, H: t.flow.Y - top},
			Stroke:      t.style.Outline.Color,
			StrokeWidth: t.style.Outline.Width,
			Radius:      t.style.Radius,
		})
	}
	return nil
}

// calculateWidths computes final column widths based on definitions and available space.
func (t *Table) calculateWidths() []float64 {
	totalWidth := t.flow.W

	numCols := len(t.columns)
	if numCols == 0 {
		if len(t.rows) > 0 {
			numCols = len(t.rows[0].cells)
		}
		if numCols == 0 {
			return nil
		}
		t.columns = make([]ColumnDef, numCols)
	}

	widths := make([]float64, numCols)
	fixedTotal := 0.0
	autoCount := 0

	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			fixedTotal += col.Width
		} else {
			autoCount++
		}
	}

	if autoCount > 0 {
		remaining := math.Max(totalWidth-fixedTotal, 0)
		autoWidth := remaining / float64(autoCount)
		for i, col := range t.columns {
			if col.Width == 0 {
				w := autoWidth
				if col.MinWidth > 0 && w < col.MinWidth {
					w = col.MinWidth
				}
				if col.MaxWidth > 0 && w > col.MaxWidth {
					w = col.MaxWidth
				}
				widths[i] = w
			}
		}
	}

	return widths
}

type placedCell struct {
	x, w  float64
	lines []string
	style CellStyle
	align Align
	pad   Padding
}

// layoutRow wraps every cell of r and returns the cells and the row height.
func (t *Table) layoutRow(r *Row, widths []float64, bodyIdx int, isHeader bool) ([]placedCell, float64) {
	maxH := r.minH
	x := t.flow.X
	var cells []placedCell

	col := 0
	for _, cell := range r.cells {
		if col >= len(widths) {
			break
		}
		cellW := widths[col]
		for j := 1; j < cell.colspan && col+j < len(widths); j++ {
			cellW += widths[col+j]
		}

		style := t.resolveCellStyle(cell, r, bodyIdx, isHeader)
		pad := t.style.CellPadding
		if style.Padding != nil {
			pad = *style.Padding
		}
		align := AlignLeft
		if style.Align != nil {
			align = *style.Align
		} else if col < len(t.columns) {
			align = t.columns[col].Align
		}

		contentW := math.Max(cellW-pad.Left-pad.Right, 1)
		lines := t.flow.c.measure.Wrap(*style.Font, cell.text, contentW)
		cellH := float64(len(lines))*t.lineHeight(*style.Font) + pad.Top + pad.Bottom
		if cellH > maxH {
			maxH = cellH
		}

		cells = append(cells, placedCell{x: x, w: cellW, lines: lines, style: style, align: align, pad: pad})
		x += cellW
		col += cell.colspan
	}
	return cells, maxH
}

func (t *Table) lineHeight(spec fonts.Spec) float64 {
	lh := t.style.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return spec.Size * lh
}

// renderRow places a single row and advances the flow.
func (t *Table) renderRow(r *Row, widths []float64, bodyIdx int, isHeader bool) {
	cells, rowH := t.layoutRow(r, widths, bodyIdx, isHeader)
	y := t.flow.Y
	c := t.flow.c

	for _, pc := range cells {
		if pc.style.FillColor != nil {
			c.Add(Node{Kind: BoxNode, Rect: Rect{X: pc.x, Y: y, W: pc.w, H: rowH}, Fill: *pc.style.FillColor})
		}
	}
	for _, pc := range cells {
		lh := t.lineHeight(*pc.style.Font)
		textColor := t.style.TextColor
		if pc.style.TextColor != nil {
			textColor = *pc.style.TextColor
		}
		c.Add(Node{
			Kind:       TextNode,
			Rect:       Rect{X: pc.x + pc.pad.Left, Y: y + pc.pad.Top, W: pc.w - pc.pad.Left - pc.pad.Right, H: lh * float64(len(pc.lines))},
			Lines:      pc.lines,
			Font:       *pc.style.Font,
			Color:      textColor,
			Align:      pc.align,
			LineHeight: lh,
		})
	}
	if t.style.Border != nil && t.style.Border.Width > 0 {
		c.Add(Node{
			Kind: BoxNode,
			Rect: Rect{X: t.flow.X, Y: y + rowH - t.style.Border.Width, W: t.flow.W, H: t.style.Border.Width},
			Fill: t.style.Border.Color,
		})
	}

	t.flow.Y = y + rowH
}

// resolveCellStyle determines the effective style for a cell by merging
// table, alternate row, header, row, and cell-level styles.
func (t *Table) resolveCellStyle(cell *Cell, row *Row, bodyIdx int, isHeader bool) CellStyle {
	font := t.style.CellFont
	result := CellStyle{Font: &font}

	if isHeader && t.style.HeaderStyle != nil {
		mergeStyle(&result, t.style.HeaderStyle)
	}

	if !isHeader && t.style.AlternateRows != nil && bodyIdx >= 0 {
		if bodyIdx%2 == 0 {
			mergeStyle(&result, &t.style.AlternateRows.Even)
		} else {
			mergeStyle(&result, &t.style.AlternateRows.Odd)
		}
	}

	if row.style != nil {
		mergeStyle(&result, row.style)
	}

	if cell.style != nil {
		mergeStyle(&result, cell.style)
	}

	return result
}

// mergeStyle copies non-nil fields from src to dst.
func mergeStyle(dst, src *CellStyle) {
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != nil {
		dst.Align = src.Align
	}
	if src.Padding != nil {
		dst.Padding = src.Padding
	}
}

