package tui

import (
	"testing"

	"github.com/lowhung/buswatch/tui/data"
	"github.com/stretchr/testify/assert"
)

func TestSortBottlenecksByUnreadColumn(t *testing.T) {
	rows := []bottleneckRow{
		{module: "a", topic: "t1", kind: "R", status: data.StatusWarning, unread: 500},
		{module: "b", topic: "t2", kind: "R", status: data.StatusWarning, unread: 1500},
	}

	sortBottlenecks(rows, 5, true)
	assert.Equal(t, "a", rows[0].module, "ascending unread sort puts the smaller backlog first")

	sortBottlenecks(rows, 5, false)
	assert.Equal(t, "b", rows[0].module, "descending unread sort puts the larger backlog first")
}

func TestSortColumnCountIncludesUnreadForBottleneck(t *testing.T) {
	assert.Equal(t, 6, sortColumnCount(ViewBottleneck), "Status, Module, Topic, Kind, Pending, Unread")
}
