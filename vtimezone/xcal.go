package vtimezone

import (
	"strings"
	"time"

	"github.com/beevik/etree"
)

// xCalNamespace is the xCal (RFC 6321) XML namespace.
const xCalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// EncodeXCal renders compiled blocks as an xCal document:
// icalendar > vcalendar > components > vtimezone, with one standard or
// daylight component per block.
func EncodeXCal(tzID string, blocks []InfoBlock) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	icalendar := doc.CreateElement("icalendar")
	icalendar.CreateAttr("xmlns", xCalNamespace)
	vcalendar := icalendar.CreateElement("vcalendar")
	components := vcalendar.CreateElement("components")
	vtimezone := components.CreateElement("vtimezone")

	props := vtimezone.CreateElement("properties")
	props.CreateElement("tzid").CreateElement("text").SetText(tzID)

	children := vtimezone.CreateElement("components")
	for _, b := range blocks {
		children.AddChild(xcalBlock(b))
	}
	return doc
}

func xcalBlock(b InfoBlock) *etree.Element {
	elem := etree.NewElement(strings.ToLower(string(b.Kind)))
	props := elem.CreateElement("properties")

	dtstart := props.CreateElement("dtstart")
	dtstart.CreateElement("date-time").SetText(b.Start.Format("2006-01-02T15:04:05"))

	from := props.CreateElement("tzoffsetfrom")
	from.CreateElement("utc-offset").SetText(xcalOffset(b.OffsetFrom))
	to := props.CreateElement("tzoffsetto")
	to.CreateElement("utc-offset").SetText(xcalOffset(b.OffsetTo))

	props.CreateElement("tzname").CreateElement("text").SetText(b.Name)

	for _, r := range b.Rules {
		props.CreateElement("rrule").CreateElement("recur").SetText(r.String())
	}
	for _, list := range b.Dates {
		rdate := props.CreateElement("rdate")
		for _, p := range list.Periods {
			if p.End.IsPresent() || p.Duration.IsPresent() {
				period := rdate.CreateElement("period")
				period.CreateElement("start").SetText(p.Start.Format("2006-01-02T15:04:05"))
				if end, ok := p.End.Get(); ok {
					period.CreateElement("end").SetText(end.Format("2006-01-02T15:04:05"))
				} else if d, ok := p.Duration.Get(); ok {
					period.CreateElement("duration").SetText(formatDuration(d))
				}
				continue
			}
			rdate.CreateElement("date-time").SetText(p.Start.Format("2006-01-02T15:04:05"))
		}
	}
	return elem
}

// xcalOffset renders an offset in the xCal "+01:00" form.
func xcalOffset(d time.Duration) string {
	raw := FormatUTCOffset(d)
	return raw[:3] + ":" + raw[3:]
}
