package enrich

import "github.com/andybalholm/cascadia"

// Selectors for a company detail page. The founder profile domain is
// excluded from the website match.
var (
	selWebsite      = cascadia.MustCompile("a.flex.h-9.w-9.items-center.justify-center.rounded-md.border.bg-white[href^='http']:not([href*='linkedin.com'])")
	selFounderBlock = cascadia.MustCompile("div.flex.flex-row.items-center.gap-x-2")
	selFounderName  = cascadia.MustCompile("div.text-xl.font-bold")
	selFounderLink  = cascadia.MustCompile("div.flex.gap-x-1.flex a[href*='linkedin.com']")
)
