package gcode

import "slices"

// Profile describes the G-code dialect of a machine controller.
type Profile struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	StartCode     []string `json:"start_code"`
	SpindleStart  string   `json:"spindle_start"` // format string taking the spindle speed
	SpindleStop   string   `json:"spindle_stop"`
	RapidMove     string   `json:"rapid_move"`
	FeedMove      string   `json:"feed_move"`
	EndCode       []string `json:"end_code"` // [SafeZ] is replaced with the configured safe height
	CommentPrefix string   `json:"comment_prefix"`
	CommentSuffix string   `json:"comment_suffix"`
	DecimalPlaces int      `json:"decimal_places"`
}

// Profiles are the built-in controller dialects.
var Profiles = []Profile{
	{
		Name:          "Grbl",
		Description:   "Grbl 1.1 routers and panel cutters",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC with path blending",
		StartCode:     []string{"G21 G90 G64 P0.01", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G53 G0 X0 Y0", "M2"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 / Mach4",
		StartCode:     []string{"G90 G21 G17 G40 G49"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G00",
		FeedMove:      "G01",
		EndCode:       []string{"G00 Z[SafeZ]", "G00 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 3,
	},
	{
		Name:          "Generic",
		Description:   "Plain RS-274 without spindle control",
		StartCode:     []string{"G90", "G21"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 2,
	},
}

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, bool) {
	i := slices.IndexFunc(Profiles, func(p Profile) bool { return p.Name == name })
	if i < 0 {
		return Profile{}, false
	}
	return Profiles[i], true
}

// ProfileNames lists the built-in profile names in order.
func ProfileNames() []string {
	names := make([]string, len(Profiles))
	for i, p := range Profiles {
		names[i] = p.Name
	}
	return names
}
