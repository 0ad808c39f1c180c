package composition

import (
	"fmt"

	"github.com/google/uuid"
)

// idNamespace seeds deterministic element-id synthesis. Derived once from
// the DNS namespace so the same snapshot always yields the same ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("clipmill.element"))

// EnsureElementIDs fills in missing element ids across all pages,
// deterministically and without colliding with authored ids. Returns the
// number of ids synthesized.
func EnsureElementIDs(comp *Composition) int {
	seen := make(map[string]struct{})
	for pi := range comp.Pages {
		collectIDs(comp.Pages[pi].Elements, seen)
	}

	n := 0
	for pi := range comp.Pages {
		n += fillIDs(comp.Pages[pi].Elements, fmt.Sprintf("page[%d]", pi), seen)
	}
	return n
}

func collectIDs(els []Element, seen map[string]struct{}) {
	for i := range els {
		if els[i].ID != "" {
			seen[els[i].ID] = struct{}{}
		}
		collectIDs(els[i].Children, seen)
	}
}

func fillIDs(els []Element, path string, seen map[string]struct{}) int {
	n := 0
	for i := range els {
		el := &els[i]
		elPath := fmt.Sprintf("%s/%s[%d]", path, el.Type, i)
		if el.ID == "" {
			el.ID = synthesizeID(elPath, seen)
			seen[el.ID] = struct{}{}
			n++
		}
		n += fillIDs(el.Children, elPath, seen)
	}
	return n
}

// synthesizeID hashes the element's tree path. On the off chance the hash
// collides with an authored id, the path is salted with a counter until a
// free id comes out; the salt sequence is itself deterministic.
func synthesizeID(path string, seen map[string]struct{}) string {
	for salt := 0; ; salt++ {
		input := path
		if salt > 0 {
			input = fmt.Sprintf("%s#%d", path, salt)
		}
		id := uuid.NewSHA1(idNamespace, []byte(input)).String()
		if _, taken := seen[id]; !taken {
			return id
		}
	}
}
