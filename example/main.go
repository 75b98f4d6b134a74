package main

import (
	"bytes"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/vtimezone"
	"github.com/cyp0633/librecur/vtimezone/zoneinfo"
	"github.com/emersion/go-ical"
)

const (
	timezoneID        = "Europe/Berlin"
	earliestSupported = "2015-01-01"
)

func main() {
	expandRule()
	compileTimezone()
}

// expandRule prints the occurrences of a recurring event inside a window.
func expandRule() {
	rule, err := recurrence.ParseRule("FREQ=MONTHLY;BYDAY=MO,TU,WE,TH,FR;BYSETPOS=-1")
	if err != nil {
		log.Fatalf("parse rule: %v", err)
	}

	engine := recurrence.NewEngine()
	anchor := time.Date(2024, time.January, 31, 17, 0, 0, 0, time.UTC)
	occurrences := engine.ExpandRule(rule, anchor,
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		true)

	fmt.Printf("Last business day of each month (%s):\n", rule)
	for _, occ := range occurrences {
		fmt.Printf("  %s\n", occ.Format(time.RFC1123))
	}
	fmt.Println()
}

// compileTimezone turns the host timezone database into a VTIMEZONE
// definition and prints it as iCalendar text.
func compileTimezone() {
	compiler := vtimezone.NewCompiler(zoneinfo.New(), nil)
	earliest, err := time.Parse("2006-01-02", earliestSupported)
	if err != nil {
		log.Fatalf("parse date: %v", err)
	}

	blocks, err := compiler.Compile(timezoneID, earliest, false)
	if err != nil {
		log.Fatalf("compile %s: %v", timezoneID, err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//librecur//Timezone Compiler//EN")
	cal.Children = append(cal.Children, vtimezone.EncodeVTimeZone(timezoneID, blocks))

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		log.Fatalf("encode calendar: %v", err)
	}
	fmt.Print(buf.String())
}
