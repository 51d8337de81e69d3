package leaguedomain

import (
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// botNamePool is the fixed pool synthetic competitors draw display names
// from before any generated fallbacks kick in.
var botNamePool = []string{
	"Aria", "Bender", "Caspian", "Dakota", "Ember",
	"Falk", "Gwen", "Harlow", "Indigo", "Juno",
	"Kai", "Lark", "Milo", "Nova", "Orion",
	"Piper", "Quill", "Rooke", "Sable", "Tatum",
	"Ulysses", "Vesper", "Wren", "Xan", "Yara",
	"Zephyr", "Ash", "Briar", "Cleo", "Dune",
	"Echo", "Fox", "Gale", "Hollis", "Iris",
	"Jett", "Koda", "Lumen", "Moss", "Nyx",
}

const suffixRetries = 5

// GenerateBotNames produces count display names, none of which collide with
// each other or with the names in taken.
//
// Names come from the fixed pool first. Once the pool is exhausted the
// generator draws gamertags, then appends random two-digit suffixes with a
// bounded number of retries, and finally falls back to a token that is
// unique by construction.
func GenerateBotNames(r *rand.Rand, faker *gofakeit.Faker, taken map[string]bool, count int) []string {
	used := make(map[string]bool, len(taken)+count)
	for name := range taken {
		used[name] = true
	}

	names := make([]string, 0, count)
	claim := func(name string) bool {
		if name == "" || used[name] {
			return false
		}
		used[name] = true
		names = append(names, name)
		return true
	}

	pool := append([]string(nil), botNamePool...)
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	for _, name := range pool {
		if len(names) == count {
			return names
		}
		claim(name)
	}

	for len(names) < count {
		base := faker.Gamertag()
		if claim(base) {
			continue
		}

		suffixed := false
		for attempt := 0; attempt < suffixRetries; attempt++ {
			candidate := fmt.Sprintf("%s%02d", base, r.Intn(100))
			if claim(candidate) {
				suffixed = true
				break
			}
		}
		if suffixed {
			continue
		}

		// Unique by construction, so claim cannot fail.
		claim(fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]))
	}

	return names
}
