package components

// Palette used for arena furniture. Names follow the colours of the
// original figure so frames and the live viewer agree.
var (
	ColorLever       = RGB{R: 128, G: 128, B: 128}
	ColorHopper      = RGB{R: 0, G: 0, B: 0}
	ColorSignalRed   = RGB{R: 220, G: 40, B: 40}
	ColorSignalGreen = RGB{R: 40, G: 170, B: 60}
	ColorAgent       = RGB{R: 40, G: 80, B: 220}
	ColorTrail       = RGB{R: 0, G: 0, B: 0}
	ColorLeftSeries  = RGB{R: 220, G: 40, B: 40}
	ColorRightSeries = RGB{R: 0, G: 0, B: 0}

	ColorWallGrey  = RGB{R: 128, G: 128, B: 128}
	ColorWallBlue  = RGB{R: 0, G: 0, B: 255}
	ColorWallRed   = RGB{R: 255, G: 0, B: 0}
	ColorWallGreen = RGB{R: 0, G: 128, B: 0}
)
