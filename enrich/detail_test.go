package enrich

import (
	"testing"

	"github.com/use-agent/harvest/models"
)

const detailHTML = `<html>
  <a class="flex h-9 w-9 items-center justify-center rounded-md border bg-white" href="https://testco.com"></a>
  <div class="flex flex-row items-center gap-x-2">
    <div class="text-xl font-bold">Alice Founder</div>
    <div class="flex gap-x-1 flex">
      <a href="https://linkedin.com/in/alice">LinkedIn</a>
    </div>
  </div>
</html>`

func TestParseDetail(t *testing.T) {
	page, err := ParseDetail(detailHTML)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if got := models.Deref(page.Website); got != "https://testco.com" {
		t.Errorf("website = %q", got)
	}
	if len(page.Founders) != 1 {
		t.Fatalf("got %d founders, want 1", len(page.Founders))
	}
	f := page.Founders[0]
	if models.Deref(f.Name) != "Alice Founder" || models.Deref(f.LinkedIn) != "https://linkedin.com/in/alice" {
		t.Errorf("founder = %q / %q", models.Deref(f.Name), models.Deref(f.LinkedIn))
	}
}

func TestParseDetail_WebsiteSkipsProfileLinks(t *testing.T) {
	html := `<html>
  <a class="flex h-9 w-9 items-center justify-center rounded-md border bg-white" href="/relative"></a>
  <a class="flex h-9 w-9 items-center justify-center rounded-md border bg-white" href="https://www.linkedin.com/company/x"></a>
  <a class="flex h-9 w-9 items-center justify-center rounded-md border bg-white" href="https://first.example"></a>
  <a class="flex h-9 w-9 items-center justify-center rounded-md border bg-white" href="https://second.example"></a>
</html>`
	page, err := ParseDetail(html)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if got := models.Deref(page.Website); got != "https://first.example" {
		t.Errorf("website = %q, want first external match", got)
	}
}

func TestParseDetail_FoundersInOrderWithMissingParts(t *testing.T) {
	html := `<html>
  <div class="flex flex-row items-center gap-x-2">
    <div class="text-xl font-bold">First</div>
  </div>
  <div class="flex flex-row items-center gap-x-2">
    <div class="flex gap-x-1 flex"><a href="https://linkedin.com/in/second">in</a></div>
  </div>
  <div class="flex flex-row items-center gap-x-2">
    <div class="text-xl font-bold"> Third </div>
    <div class="flex gap-x-1 flex">
      <a href="https://twitter.com/third">x</a>
      <a href="https://linkedin.com/in/third">in</a>
    </div>
  </div>
</html>`
	page, err := ParseDetail(html)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if page.Website != nil {
		t.Errorf("website should be absent, got %q", *page.Website)
	}
	if len(page.Founders) != 3 {
		t.Fatalf("got %d founders, want 3", len(page.Founders))
	}

	tests := []struct {
		name, linkedin *string
	}{
		{models.Text("First"), nil},
		{nil, models.Text("https://linkedin.com/in/second")},
		{models.Text("Third"), models.Text("https://linkedin.com/in/third")},
	}
	for i, tt := range tests {
		got := page.Founders[i]
		if !sameText(got.Name, tt.name) || !sameText(got.LinkedIn, tt.linkedin) {
			t.Errorf("founder %d = {%v %v}, want {%v %v}", i,
				got.Name, got.LinkedIn, tt.name, tt.linkedin)
		}
	}
}

func TestParseDetail_EmptyPage(t *testing.T) {
	page, err := ParseDetail("")
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if page.Website != nil || page.Founders == nil || len(page.Founders) != 0 {
		t.Errorf("empty page: got %+v", page)
	}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
