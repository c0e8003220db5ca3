// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/ui/styles"
	"github.com/jeranaias/chatdeck/internal/util"
)

// TimestampLayout is the sidebar timestamp format (DD/MM/YY HH:mm).
const TimestampLayout = "02/01/06 15:04"

// FormatTimestamp renders t in local time with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimestampLayout)
}

// =============================================================================
// LIST ITEM
// =============================================================================

// conversationItem adapts a conversation to the bubbles list.
type conversationItem struct {
	conv   model.Conversation
	active bool
	width  int
}

var _ list.DefaultItem = conversationItem{}

// FilterValue implements list.Item.
func (i conversationItem) FilterValue() string { return i.conv.Name }

// Title implements list.DefaultItem.
func (i conversationItem) Title() string {
	marker := "  "
	if i.active {
		marker = "* "
	}
	return util.TruncateWidth(marker+util.SingleLine(i.conv.Name), i.width)
}

// Description implements list.DefaultItem.
func (i conversationItem) Description() string {
	desc := fmt.Sprintf("  %s  %d msgs", FormatTimestamp(i.conv.Timestamp), i.conv.MessageCount())
	return util.TruncateWidth(desc, i.width)
}

// =============================================================================
// LIST SETUP
// =============================================================================

func newSidebar(theme *styles.Theme, width, height int) list.Model {
	l := list.New(nil, newSidebarDelegate(), width, height)
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.PanelTitle
	return l
}

func newSidebarDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(styles.Cyan).
		BorderForeground(styles.Cyan)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(styles.TextSecondary).
		BorderForeground(styles.Cyan)
	d.Styles.NormalTitle = d.Styles.NormalTitle.Foreground(styles.TextPrimary)
	d.Styles.NormalDesc = d.Styles.NormalDesc.Foreground(styles.TextMuted)
	return d
}

// selectedConversationID returns the id under the sidebar cursor.
func selectedConversationID(l list.Model) (int64, bool) {
	item, ok := l.SelectedItem().(conversationItem)
	if !ok {
		return 0, false
	}
	return item.conv.ID, true
}
