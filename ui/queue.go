package ui

import (
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// QueueView lists the tracks that are downloaded and waiting to play
type QueueView struct {
	container *tview.Flex
	table     *tview.Table
	isActive  bool
	shown     []string
}

// NewQueueView creates a new queue view
func NewQueueView() *QueueView {
	qv := &QueueView{}

	qv.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(false, false).
		SetFixed(1, 0)

	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	qv.table.SetCell(0, 0, tview.NewTableCell("#").SetStyle(headerStyle))
	qv.table.SetCell(0, 1, tview.NewTableCell("Up next").SetStyle(headerStyle))

	qv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(qv.table, 0, 1, true)

	qv.container.SetBorder(true).
		SetTitle(" Upcoming (ESC/u to close) ").
		SetBorderColor(tcell.NewHexColor(0x00bcd4))

	return qv
}

// IsActive returns whether the queue view is active
func (qv *QueueView) IsActive() bool {
	return qv.isActive
}

// GetContainer returns the queue view container
func (qv *QueueView) GetContainer() *tview.Flex {
	return qv.container
}

// Refresh redraws the table when the upcoming tracks changed
func (qv *QueueView) Refresh(upcoming []string) {
	if slices.Equal(qv.shown, upcoming) && qv.table.GetRowCount() > 1 {
		return
	}
	qv.shown = append(qv.shown[:0], upcoming...)

	for i := qv.table.GetRowCount() - 1; i > 0; i-- {
		qv.table.RemoveRow(i)
	}

	if len(upcoming) == 0 {
		qv.table.SetCell(1, 0, tview.NewTableCell("Nothing downloaded yet").
			SetAlign(tview.AlignCenter).
			SetExpansion(2).
			SetTextColor(tcell.ColorGray))
		return
	}

	rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, name := range upcoming {
		row := i + 1
		qv.table.SetCell(row, 0,
			tview.NewTableCell(fmt.Sprintf("%d", row)).
				SetStyle(rowStyle.Foreground(tcell.ColorLightGreen)).
				SetAlign(tview.AlignRight))
		qv.table.SetCell(row, 1,
			tview.NewTableCell(tview.Escape(name)).
				SetStyle(rowStyle).
				SetExpansion(1))
	}
}
