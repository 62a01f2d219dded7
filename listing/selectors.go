package listing

import "github.com/andybalholm/cascadia"

// Selectors for the directory listing page. They track the site's generated
// class names, so every extraction goes through this table.
var (
	selItem        = cascadia.MustCompile("a._company_i9oky_355")
	selName        = cascadia.MustCompile("span._coName_i9oky_470")
	selLocation    = cascadia.MustCompile("span._coLocation_i9oky_486")
	selDescription = cascadia.MustCompile("div[class='mb-1.5 text-sm'] span")
	selBatch       = cascadia.MustCompile("div[class='_pillWrapper_i9oky_33'] span[class*='pill']")
)

// detailLinkAttr is read from the item anchor itself.
const detailLinkAttr = "href"
