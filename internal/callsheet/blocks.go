package callsheet

import (
	"fmt"

	"github.com/sells-group/coldcall-cli/internal/timezone"
)

// Block colors, in priority order.
const (
	ColorPrime     = "green"
	ColorDeadZone  = "red"
	ColorSecondary = "yellow"
)

// Block is one fixed call window. Scheduling math always runs on ET hours;
// only Label is rendered in the operator's display timezone.
type Block struct {
	StartET     int
	EndET       int
	Label       string
	Color       string
	Description string
	TheirLocal  string
}

// rawBlock is a block before label rendering.
type rawBlock struct {
	startET, endET int
	color          string
	description    string
	theirLocal     string
}

// The reference schedule: five prime morning hours, the two-hour dead zone,
// five secondary afternoon hours. Exactly 11 blocks per run.
var rawBlocks = []rawBlock{
	{8, 9, ColorPrime, "Eastern Prospects", "8-9 AM PRIME"},
	{9, 10, ColorPrime, "Eastern + Central Prospects", "PRIME"},
	{10, 11, ColorPrime, "Central + Mountain Prospects", "PRIME"},
	{11, 12, ColorPrime, "Mountain + Pacific Prospects", "PRIME"},
	{12, 13, ColorPrime, "Pacific Prospects", "9-10 AM PRIME"},
	{13, 15, ColorDeadZone, "Lunch Dead Zone", "Do not dial"},
	{15, 16, ColorSecondary, "Eastern Afternoon", "3-4 PM SECONDARY"},
	{16, 17, ColorSecondary, "Eastern + Central Afternoon", "SECONDARY"},
	{17, 18, ColorSecondary, "Central + Mountain Afternoon", "SECONDARY"},
	{18, 19, ColorSecondary, "Mountain + Pacific Afternoon", "SECONDARY"},
	{19, 20, ColorSecondary, "Pacific Afternoon", "4-5 PM SECONDARY"},
}

// NumBlocks is the number of blocks in the reference schedule.
var NumBlocks = len(rawBlocks)

// hoursBehindET gives each zone's fixed offset from the reference timezone.
// DST shifts every zone together, so fixed offsets hold year round.
var hoursBehindET = map[timezone.Zone]int{
	timezone.Eastern:  0,
	timezone.Central:  1,
	timezone.Mountain: 2,
	timezone.Pacific:  3,
	timezone.Alaska:   4,
	timezone.Hawaii:   5,
}

// BuildBlocks renders the reference schedule with labels converted into the
// given display timezone. Called once per process; the block structure and
// ET hours never change, only the label text.
func BuildBlocks(displayTZ string) []Block {
	offset := hoursBehindET[timezone.Zone(displayTZ)]
	abbrev := timezone.Label(timezone.Zone(displayTZ))
	if _, known := hoursBehindET[timezone.Zone(displayTZ)]; !known {
		offset = 0
		abbrev = "ET"
	}

	blocks := make([]Block, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		label := fmt.Sprintf("%s - %s %s",
			formatHour(rb.startET-offset),
			formatHour(rb.endET-offset),
			abbrev,
		)
		blocks = append(blocks, Block{
			StartET:     rb.startET,
			EndET:       rb.endET,
			Label:       label,
			Color:       rb.color,
			Description: rb.description,
			TheirLocal:  rb.theirLocal,
		})
	}
	return blocks
}

// formatHour renders an hour as "5:00 AM" / "12:00 PM", wrapping negatives
// around midnight.
func formatHour(h int) string {
	for h <= 0 {
		h += 24
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h
	if display > 12 {
		display -= 12
	}
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, period)
}
