// Package timezone renders instants in the service's display zone.
package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata" // 精简镜像里可能没有 zoneinfo
)

const (
	DefaultZone = "Europe/Madrid"

	// DD/MM/YYYY HH:mm:ss
	UserLayout = "02/01/2006 15:04:05"
	// YYYY-MM-DD HH:mm:ss
	PlainLayout = "2006-01-02 15:04:05"
)

type Formatter struct {
	name string
	loc  *time.Location
	now  func() time.Time
}

func New(name string) (*Formatter, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &Formatter{name: name, loc: loc, now: time.Now}, nil
}

// MustNew is for tests and static setup.
func MustNew(name string) *Formatter {
	f, err := New(name)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formatter) Name() string             { return f.name }
func (f *Formatter) Location() *time.Location { return f.loc }

func (f *Formatter) Now() time.Time { return f.now().In(f.loc) }

func (f *Formatter) In(t time.Time) time.Time { return t.In(f.loc) }

func (f *Formatter) FormatForUser(t time.Time) string { return t.In(f.loc).Format(UserLayout) }

func (f *Formatter) ISO(t time.Time) string { return t.In(f.loc).Format(time.RFC3339) }

func (f *Formatter) String(t time.Time) string { return t.In(f.loc).Format(PlainLayout) }

type Info struct {
	Timezone  string `json:"timezone"`
	UTC       string `json:"utc"`
	Local     string `json:"local"`
	LocalISO  string `json:"localISO"`
	Offset    string `json:"offset"`
	ProcessTZ string `json:"processTZ"`
}

// Info 调试用：当前时间在各种表示下的值
func (f *Formatter) Info() Info {
	now := f.now()
	return Info{
		Timezone:  f.name,
		UTC:       now.UTC().Format(time.RFC3339Nano),
		Local:     f.FormatForUser(now),
		LocalISO:  f.ISO(now),
		Offset:    now.In(f.loc).Format("-07:00"),
		ProcessTZ: time.Local.String(),
	}
}
