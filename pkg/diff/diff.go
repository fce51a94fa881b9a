// Package diff compares two drafts of a run: the manuscript chapters and
// the character roster. Used to review what a regeneration changed.
package diff

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"fabula/pkg/schema"
	"fabula/pkg/utils"
)

type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

type WordDelta struct {
	Op   Op
	Text string
}

type StringDiff struct {
	Old    string
	New    string
	Deltas []WordDelta
}

type FieldDiff struct {
	Path string
	Str  StringDiff
}

type ChapterDiff struct {
	Key   string
	State ChangeType
	Str   StringDiff
}

type CharacterDiff struct {
	Name       string
	State      ChangeType
	FieldDiffs []FieldDiff
	PowersAdd  []string
	PowersDel  []string
	PowersEd   []StringDiff
}

type RevisionDiff struct {
	Chapters   []ChapterDiff
	Characters []CharacterDiff
}

func Revisions(oldM, newM map[string]string, oldC, newC []schema.Character) RevisionDiff {
	return RevisionDiff{
		Chapters:   Manuscripts(oldM, newM),
		Characters: Characters(oldC, newC),
	}
}

func Manuscripts(oldM, newM map[string]string) []ChapterDiff {
	keys := map[string]struct{}{}
	for k := range oldM {
		keys[k] = struct{}{}
	}
	for k := range newM {
		keys[k] = struct{}{}
	}

	out := make([]ChapterDiff, 0, len(keys))
	for k := range keys {
		o, okO := oldM[k]
		n, okN := newM[k]
		switch {
		case okO && !okN:
			out = append(out, ChapterDiff{Key: k, State: Removed, Str: strEq(o, "")})
		case !okO && okN:
			out = append(out, ChapterDiff{Key: k, State: Added, Str: strEq("", n)})
		case o == n:
			out = append(out, ChapterDiff{Key: k, State: Unchanged})
		default:
			out = append(out, ChapterDiff{Key: k, State: Modified, Str: strDiff(o, n)})
		}
	}
	slices.SortFunc(out, func(a, b ChapterDiff) int {
		return cmp.Compare(utils.ChapterNumber(a.Key), utils.ChapterNumber(b.Key))
	})
	return out
}

func Characters(oldC, newC []schema.Character) []CharacterDiff {
	omap := map[string]schema.Character{}
	nmap := map[string]schema.Character{}
	keys := map[string]struct{}{}

	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	for _, c := range oldC {
		k := norm(c.Name)
		omap[k] = c
		keys[k] = struct{}{}
	}
	for _, c := range newC {
		k := norm(c.Name)
		nmap[k] = c
		keys[k] = struct{}{}
	}

	out := make([]CharacterDiff, 0, len(keys))
	for k := range keys {
		o, okO := omap[k]
		n, okN := nmap[k]
		switch {
		case okO && !okN:
			out = append(out, CharacterDiff{Name: o.Name, State: Removed})
		case !okO && okN:
			out = append(out, CharacterDiff{
				Name:  n.Name,
				State: Added,
				FieldDiffs: []FieldDiff{
					{Path: "Role", Str: strEq("", n.Role)},
					{Path: "Arc", Str: strEq("", n.Arc)},
					{Path: "FatalFlaw", Str: strEq("", n.FatalFlaw)},
					{Path: "HiddenAgenda", Str: strEq("", n.HiddenAgenda)},
				},
				PowersAdd: append([]string(nil), n.Powers...),
			})
		default:
			fd := make([]FieldDiff, 0, 4)
			addFieldDiff := func(path, a, b string) {
				if a == b {
					return
				}
				fd = append(fd, FieldDiff{Path: path, Str: strDiff(a, b)})
			}

			addFieldDiff("Role", o.Role, n.Role)
			addFieldDiff("Arc", o.Arc, n.Arc)
			addFieldDiff("FatalFlaw", o.FatalFlaw, n.FatalFlaw)
			addFieldDiff("HiddenAgenda", o.HiddenAgenda, n.HiddenAgenda)

			adds, dels, edits := diffStringListSmart(o.Powers, n.Powers)

			state := Unchanged
			if len(fd) > 0 || len(adds) > 0 || len(dels) > 0 || len(edits) > 0 {
				state = Modified
			}
			out = append(out, CharacterDiff{
				Name:       n.Name,
				State:      state,
				FieldDiffs: fd,
				PowersAdd:  adds,
				PowersDel:  dels,
				PowersEd:   edits,
			})
		}
	}
	slices.SortFunc(out, func(a, b CharacterDiff) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func strEq(a, b string) StringDiff {
	return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Insert, Text: b}}}
}

func strDiff(a, b string) StringDiff {
	if a == b {
		return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Equal, Text: a}}}
	}
	words := utils.DiffWords(a, b)
	deltas := make([]WordDelta, 0, len(words))
	for _, w := range words {
		switch {
		case w.Op < 0:
			deltas = append(deltas, WordDelta{Op: Delete, Text: w.Text})
		case w.Op > 0:
			deltas = append(deltas, WordDelta{Op: Insert, Text: w.Text})
		default:
			deltas = append(deltas, WordDelta{Op: Equal, Text: w.Text})
		}
	}
	return StringDiff{Old: a, New: b, Deltas: coalesceSpaces(deltas)}
}

func coalesceSpaces(in []WordDelta) []WordDelta {
	out := make([]WordDelta, 0, len(in))
	flush := func(op Op, buf *strings.Builder) {
		if buf.Len() == 0 {
			return
		}
		out = append(out, WordDelta{Op: op, Text: buf.String()})
		buf.Reset()
	}
	var curOp Op = -1
	var buf strings.Builder
	for _, d := range in {
		if strings.TrimSpace(d.Text) == "" && d.Op == Equal {
			buf.WriteString(d.Text)
			continue
		}
		if curOp != d.Op && curOp != -1 {
			flush(curOp, &buf)
		}
		if curOp != d.Op {
			curOp = d.Op
		}
		buf.WriteString(d.Text)
	}
	flush(curOp, &buf)
	return out
}

func diffStringListSmart(a, b []string) (adds, dels []string, edits []StringDiff) {
	usedB := make([]bool, len(b))
	for _, as := range a {
		bestJ, best := -1, 0.0
		for j, bs := range b {
			if usedB[j] {
				continue
			}
			s := utils.Similarity(as, bs)
			if s > best {
				bestJ, best = j, s
			}
		}
		if bestJ >= 0 && best >= 0.70 {
			if as != b[bestJ] {
				edits = append(edits, strDiff(as, b[bestJ]))
			}
			usedB[bestJ] = true
		} else {
			dels = append(dels, as)
		}
	}
	for j, bs := range b {
		if !usedB[j] {
			adds = append(adds, bs)
		}
	}
	return
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgYellow  = "\x1b[33m"
	fgCyan    = "\x1b[36m"
	faint     = "\x1b[2m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

func renderStringDiff(sd StringDiff) string {
	var b strings.Builder
	for _, d := range sd.Deltas {
		switch d.Op {
		case Equal:
			b.WriteString(d.Text)
		case Insert:
			fmt.Fprintf(&b, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case Delete:
			fmt.Fprintf(&b, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		}
	}
	return b.String()
}

var stateTags = map[ChangeType]string{
	Added:     fgGreen + "[+]" + ansiReset,
	Removed:   fgRed + "[-]" + ansiReset,
	Modified:  fgYellow + "[~]" + ansiReset,
	Unchanged: faint + "[=]" + ansiReset,
}

func (d RevisionDiff) Print(w io.Writer) {
	if len(d.Characters) > 0 {
		fmt.Fprintln(w, fgCyan+"Characters"+ansiReset)
		for _, c := range d.Characters {
			fmt.Fprintf(w, "  %s %s\n", stateTags[c.State], c.Name)
			for _, f := range c.FieldDiffs {
				fmt.Fprintf(w, "    %s: %s\n", f.Path, renderStringDiff(f.Str))
			}
			for _, s := range c.PowersDel {
				fmt.Fprintf(w, "    Power: %s%s%s%s\n", fgRed, strike, s, ansiReset)
			}
			for _, s := range c.PowersAdd {
				fmt.Fprintf(w, "    Power: %s%s%s%s\n", fgGreen, uline, s, ansiReset)
			}
			for _, sd := range c.PowersEd {
				fmt.Fprintf(w, "    Power*: %s\n", renderStringDiff(sd))
			}
		}
	}
	if len(d.Chapters) > 0 {
		fmt.Fprintln(w, fgCyan+"Chapters"+ansiReset)
		for _, ch := range d.Chapters {
			fmt.Fprintf(w, "  %s %s\n", stateTags[ch.State], ch.Key)
			if ch.State == Modified {
				fmt.Fprintf(w, "    %s\n", renderStringDiff(ch.Str))
			}
		}
	}
}
