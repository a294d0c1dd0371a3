package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/roasbeef/mailactions/internal/localcore"
	"github.com/roasbeef/mailactions/internal/toast"
)

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// formatToast renders a toast as one line.
func formatToast(t toast.Toast) string {
	line := fmt.Sprintf("[%s] %s", t.Style, t.Message)
	if t.HasUndo() {
		line += " (undo)"
	}

	return line
}

// itemView is the printable form of an item.
type itemView struct {
	ID           uint64    `json:"id"`
	Type         string    `json:"type"`
	Folder       string    `json:"folder"`
	Starred      bool      `json:"starred"`
	Unread       bool      `json:"unread"`
	Labels       []string  `json:"labels,omitempty"`
	SnoozedUntil time.Time `json:"snoozed_until,omitzero"`
}

func newItemView(it core.ItemState) itemView {
	return itemView{
		ID:           uint64(it.ID),
		Type:         it.Type.String(),
		Folder:       it.Folder.String(),
		Starred:      it.Starred,
		Unread:       it.Unread,
		Labels:       it.Labels,
		SnoozedUntil: it.SnoozedUntil,
	}
}

// flags renders the boolean state of an item compactly.
func flags(it core.ItemState) string {
	var b strings.Builder
	if it.Starred {
		b.WriteString("*")
	}
	if it.Unread {
		b.WriteString("u")
	}
	if b.Len() == 0 {
		return "-"
	}

	return b.String()
}

// printItems writes items as a table or as JSON.
func printItems(w io.Writer, items []core.ItemState) error {
	if outputFormat == "json" {
		views := make([]itemView, 0, len(items))
		for _, it := range items {
			views = append(views, newItemView(it))
		}
		return outputJSON(w, views)
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No items, run seed first.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tFOLDER\tFLAGS\tLABELS\tSNOOZED")
	for _, it := range items {
		snoozed := "-"
		if !it.SnoozedUntil.IsZero() {
			snoozed = it.SnoozedUntil.Local().Format(time.DateTime)
		}
		labels := "-"
		if len(it.Labels) > 0 {
			labels = strings.Join(it.Labels, ",")
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Type,
			it.Folder, flags(it), labels, snoozed)
	}

	return tw.Flush()
}

// actionView is the printable form of an action.
type actionView struct {
	ID    string `json:"id"`
	Icon  string `json:"icon"`
	Title string `json:"title,omitempty"`
}

func newActionViews(list []action.Action) []actionView {
	out := make([]actionView, 0, len(list))
	for _, a := range list {
		d := action.Display(a)
		out = append(out, actionView{
			ID: a.ID(), Icon: d.Icon, Title: d.Title,
		})
	}

	return out
}

// printActions writes the toolbar and overflow of a selection.
func printActions(w io.Writer, visible, overflow []action.Action) error {
	if outputFormat == "json" {
		return outputJSON(w, struct {
			Visible  []actionView `json:"visible"`
			Overflow []actionView `json:"overflow"`
		}{
			Visible:  newActionViews(visible),
			Overflow: newActionViews(overflow),
		})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	section := func(name string, list []action.Action) {
		fmt.Fprintf(tw, "%s:\n", name)
		if len(list) == 0 {
			fmt.Fprintln(tw, "  (none)")
		}
		for _, v := range newActionViews(list) {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", v.ID, v.Title, v.Icon)
		}
	}
	section("Toolbar", visible)
	section("More", overflow)

	return tw.Flush()
}

// tokenView is the printable form of a pending undo token.
type tokenView struct {
	Token     string    `json:"token"`
	Operation string    `json:"operation"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// printTokens writes the pending undo tokens.
func printTokens(w io.Writer, tokens []localcore.TokenInfo,
	now time.Time) error {

	if outputFormat == "json" {
		views := make([]tokenView, 0, len(tokens))
		for _, t := range tokens {
			views = append(views, tokenView{
				Token:     t.Token.String(),
				Operation: t.Operation,
				CreatedAt: t.CreatedAt,
				ExpiresAt: t.ExpiresAt,
			})
		}
		return outputJSON(w, views)
	}

	if len(tokens) == 0 {
		_, err := fmt.Fprintln(w, "Nothing to undo.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tOPERATION\tEXPIRES IN")
	for _, t := range tokens {
		left := "never"
		if !t.ExpiresAt.IsZero() {
			left = t.ExpiresAt.Sub(now).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Token, t.Operation, left)
	}

	return tw.Flush()
}
