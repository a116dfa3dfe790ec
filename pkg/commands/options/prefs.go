package options

import (
	"fmt"
	"strconv"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/prefs"
)

// PrefsOptions describes one term's preferences on the command line. A
// preferences file is applied first and the flags then edit it.
type PrefsOptions struct {
	File        string
	Term        string
	Courses     []string
	Buffer      string
	Avail       []string
	Max         []string
	Types       []string
	Instructors []string
}

func AddPrefsArgs(cmd *cobra.Command, o *PrefsOptions) {
	cmd.Flags().StringVarP(&o.File, "prefs", "f", "",
		base.Wrap80("YAML preferences file (term, courses, buffer, availability)."))
	cmd.Flags().StringVarP(&o.Term, "term", "t", "",
		"Term to plan: fall or winter.")
	cmd.Flags().StringVar(&o.Buffer, "buffer", "",
		"Buffer between classes: none, 30m, 1h or 1h+.")
	cmd.Flags().StringArrayVar(&o.Avail, "avail", nil,
		base.Wrap80(`Availability for a day, example: --avail="fri=morning,afternoon" or --avail="mon=none".`))
	cmd.Flags().StringArrayVar(&o.Max, "max", nil,
		`Most classes on a day, example: --max="wed=2".`)
	cmd.Flags().StringArrayVar(&o.Types, "types", nil,
		`Section types for a course, example: --types="COMP1405=online,hybrid".`)
	cmd.Flags().StringArrayVar(&o.Instructors, "instructor", nil,
		`Preferred instructor for a course, example: --instructor="COMP1405=Ada Lovelace".`)

	_ = cmd.RegisterFlagCompletionFunc("term", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(course.Fall), string(course.Winter)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// Apply selects the term and loads the preferences into state.
func (o *PrefsOptions) Apply(state *app.State) error {
	var (
		fileTerm  course.Term
		fromFile  course.TermPreferences
		haveFile  = o.File != ""
		err       error
		editError error
	)
	if haveFile {
		fileTerm, fromFile, err = prefs.ReadFile(o.File)
		if err != nil {
			return err
		}
	}

	term := state.Term()
	switch {
	case o.Term != "":
		if term, err = course.ParseTerm(o.Term); err != nil {
			return err
		}
	case fileTerm != "":
		term = fileTerm
	}

	state.Edit(func(p *prefs.Store) {
		p.SwitchSemester(term)
		if haveFile {
			prefs.Replay(p, fromFile)
		}
		editError = o.edit(p)
	})
	return editError
}

func (o *PrefsOptions) edit(p *prefs.Store) error {
	if len(o.Courses) > 0 {
		if len(o.Courses) > course.MaxCourses {
			return fmt.Errorf("at most %d courses per term", course.MaxCourses)
		}
		want := p.Preferences()
		want.Courses = make([]course.CoursePreference, 0, len(o.Courses))
		for _, code := range o.Courses {
			want.Courses = append(want.Courses, course.CoursePreference{CourseCode: code})
		}
		prefs.Replay(p, want)
	}

	if o.Buffer != "" {
		b, err := course.ParseBufferTime(o.Buffer)
		if err != nil {
			return err
		}
		p.UpdateBufferTime(b)
	}

	for _, kv := range o.Avail {
		day, value, err := dayPair(kv)
		if err != nil {
			return err
		}
		times := []course.TimeOfDay{}
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" || strings.EqualFold(raw, "none") {
				continue
			}
			t, err := course.ParseTimeOfDay(raw)
			if err != nil {
				return err
			}
			times = append(times, t)
		}
		p.UpdateDayAvailability(day, times)
	}

	for _, kv := range o.Max {
		day, value, err := dayPair(kv)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 || n > course.MaxClassesPerDayLimit {
			return fmt.Errorf("--max %s: expected a number from 0 to %d", kv, course.MaxClassesPerDayLimit)
		}
		p.UpdateMaxClassesPerDay(day, n)
	}

	for _, kv := range o.Types {
		i, value, err := coursePair(p, kv)
		if err != nil {
			return err
		}
		var types []course.SectionType
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" || strings.EqualFold(raw, "any") {
				continue
			}
			st, err := course.ParseSectionType(raw)
			if err != nil {
				return err
			}
			types = append(types, st)
		}
		p.UpdateSectionTypes(i, types)
	}

	for _, kv := range o.Instructors {
		i, value, err := coursePair(p, kv)
		if err != nil {
			return err
		}
		p.UpdatePreferredInstructor(i, value)
	}
	return nil
}

func dayPair(kv string) (course.WeekDay, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok {
		return "", "", fmt.Errorf("expected DAY=VALUE, got %q", kv)
	}
	day, err := course.ParseWeekDay(name)
	if err != nil {
		return "", "", err
	}
	return day, value, nil
}

// coursePair finds the course named on the left of CODE=VALUE.
func coursePair(p *prefs.Store, kv string) (int, string, error) {
	code, value, ok := strings.Cut(kv, "=")
	if !ok {
		return 0, "", fmt.Errorf("expected CODE=VALUE, got %q", kv)
	}
	code = course.NormalizeCode(code)
	for i, c := range p.Preferences().Courses {
		if c.CourseCode == code {
			return i, value, nil
		}
	}
	return 0, "", fmt.Errorf("course %s is not in the list", code)
}
