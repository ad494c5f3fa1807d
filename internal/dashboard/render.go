package dashboard

import (
	"embed"
	"html/template"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

const (
	ViewBar = "bar"
	ViewPie = "pie"
)

// View is the viewer's display choice, carried in the query string.
type View struct {
	Mode          string
	ShowCompanies bool
}

func ParseView(q url.Values) View {
	v := View{Mode: ViewBar, ShowCompanies: true}
	if q.Get("view") == ViewPie {
		v.Mode = ViewPie
	}
	if c := q.Get("companies"); c == "off" || c == "0" || c == "false" {
		v.ShowCompanies = false
	}
	return v
}

// Query encodes v back into a query string.
func (v View) Query() string {
	q := url.Values{}
	q.Set("view", v.Mode)
	if v.ShowCompanies {
		q.Set("companies", "on")
	} else {
		q.Set("companies", "off")
	}
	return "?" + q.Encode()
}

type PageOptions struct {
	Title        string
	Subtitle     string
	FormURL      string
	PollInterval time.Duration
	Location     *time.Location
}

type Renderer struct {
	tmpl *template.Template
	opts PageOptions
}

func NewRenderer(o PageOptions) (*Renderer, error) {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 15 * time.Second
	}
	t, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: t, opts: o}, nil
}

type bar struct {
	Short string
	Label string
	Color string
	Flag  string
	Count int
	Width string
	Hover string
}

type slice struct {
	Short   string
	Color   string
	Count   int
	Percent int
	Path    string
	LabelX  string
	LabelY  string
	Anchor  string
	Hover   string
}

type card struct {
	AggregatedCategory
	Tint          string
	CompanyList   string
	ShowCompanies bool
	Undisclosed   bool
}

type pageData struct {
	PageOptions
	State        State
	View         View
	PollSeconds  int
	UpdatedAt    string
	Bars         []bar
	Ticks        []int
	Slices       []slice
	Cards        []card
	CompaniesURL string
	BarURL       string
	PieURL       string
}

func (r *Renderer) Render(w io.Writer, st State, v View) error {
	return r.tmpl.Execute(w, r.build(st, v))
}

func (r *Renderer) build(st State, v View) pageData {
	d := pageData{
		PageOptions: r.opts,
		State:       st,
		View:        v,
		PollSeconds: int(r.opts.PollInterval / time.Second),
		Slices:      PieSlices(st.Categories, v.ShowCompanies),
	}
	end, ticks := axis(MaxCount(st.Categories))
	d.Bars = bars(st.Categories, end, v.ShowCompanies)
	d.Ticks = ticks
	if st.Loaded() {
		d.UpdatedAt = st.LastUpdated.In(r.opts.Location).Format("3:04:05 PM")
	}
	for _, c := range st.Categories {
		d.Cards = append(d.Cards, card{
			AggregatedCategory: c,
			Tint:               c.Color + "30",
			CompanyList:        strings.Join(c.Companies, ", "),
			ShowCompanies:      v.ShowCompanies && len(c.Companies) > 0,
			Undisclosed:        len(c.Companies) == 0 && c.Count > 0,
		})
	}
	d.CompaniesURL = View{Mode: v.Mode, ShowCompanies: !v.ShowCompanies}.Query()
	d.BarURL = View{Mode: ViewBar, ShowCompanies: v.ShowCompanies}.Query()
	d.PieURL = View{Mode: ViewPie, ShowCompanies: v.ShowCompanies}.Query()
	return d
}

// bars scales every row against an axis running from 0 to end.
func bars(aggs []AggregatedCategory, end int, showCompanies bool) []bar {
	domainMax := float64(end)
	out := make([]bar, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, bar{
			Short: a.Short,
			Label: a.Label,
			Color: a.Color,
			Flag:  a.Flag,
			Count: a.Count,
			Width: strconv.FormatFloat(float64(a.Count)/domainMax*100, 'f', 2, 64) + "%",
			Hover: hoverText(a, showCompanies),
		})
	}
	return out
}

const maxTicks = 10

// axis picks the bar scale end and its tick labels for the largest count.
// Up to ten responses the axis runs 0..max+1 in steps of one; beyond that the
// step grows through 1, 2, 5 times a power of ten and end rounds up to it.
func axis(max int) (int, []int) {
	end := max + 1
	step := 1
search:
	for mult := 1; ; mult *= 10 {
		for _, s := range []int{1, 2, 5} {
			if step = s * mult; (end+step-1)/step <= maxTicks {
				break search
			}
		}
	}
	end = (end + step - 1) / step * step

	ticks := make([]int, 0, end/step+1)
	for v := 0; v <= end; v += step {
		ticks = append(ticks, v)
	}
	return end, ticks
}

// hoverText is the tooltip for a bar or slice. Companies are listed only
// when the viewer has them switched on.
func hoverText(a AggregatedCategory, showCompanies bool) string {
	head := strings.TrimSpace(a.Flag + " " + a.Label)
	lines := []string{head, strconv.Itoa(a.Count) + " interested"}
	if showCompanies && len(a.Companies) > 0 {
		lines = append(lines, "Companies interested: "+strings.Join(a.Companies, ", "))
	}
	return strings.Join(lines, "\n")
}

const (
	pieCX     = 200.0
	pieCY     = 200.0
	pieOuter  = 150.0
	pieInner  = 60.0
	pieLabelR = 172.0
)

// PieSlices lays out donut segments for every category with a non-zero
// count. Percentages are of the charted total, rounded to whole numbers.
func PieSlices(aggs []AggregatedCategory, showCompanies bool) []slice {
	total := 0
	for _, a := range aggs {
		total += a.Count
	}
	if total == 0 {
		return nil
	}

	var out []slice
	start := -math.Pi / 2
	for _, a := range aggs {
		if a.Count == 0 {
			continue
		}
		frac := float64(a.Count) / float64(total)
		end := start + frac*2*math.Pi
		mid := (start + end) / 2

		lx, ly := polar(pieLabelR, mid)
		anchor := "start"
		if lx < pieCX {
			anchor = "end"
		}
		out = append(out, slice{
			Short:   a.Short,
			Color:   a.Color,
			Count:   a.Count,
			Percent: int(math.Round(frac * 100)),
			Path:    arcPath(start, end),
			LabelX:  num(lx),
			LabelY:  num(ly),
			Anchor:  anchor,
			Hover:   hoverText(a, showCompanies),
		})
		start = end
	}
	return out
}

// arcPath draws a ring segment. Each side is split into two arcs so no arc
// spans more than half a turn and a lone 100% slice still closes.
func arcPath(a0, a1 float64) string {
	am := (a0 + a1) / 2
	var b strings.Builder
	pt := func(cmd string, r, a float64) {
		x, y := polar(r, a)
		b.WriteString(cmd)
		b.WriteString(num(x))
		b.WriteByte(' ')
		b.WriteString(num(y))
		b.WriteByte(' ')
	}
	arc := func(r float64, sweep string) string {
		rs := num(r)
		return "A" + rs + " " + rs + " 0 0 " + sweep + " "
	}
	pt("M", pieOuter, a0)
	pt(arc(pieOuter, "1"), pieOuter, am)
	pt(arc(pieOuter, "1"), pieOuter, a1)
	pt("L", pieInner, a1)
	pt(arc(pieInner, "0"), pieInner, am)
	pt(arc(pieInner, "0"), pieInner, a0)
	b.WriteString("Z")
	return b.String()
}

func polar(r, a float64) (float64, float64) {
	return pieCX + r*math.Cos(a), pieCY + r*math.Sin(a)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
