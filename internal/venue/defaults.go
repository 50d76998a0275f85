package venue

import "fmt"

// defaultVenues returns the school's bookable spaces.
func defaultVenues() []Venue {
	venues := make([]Venue, 0, 21)
	for _, floor := range []int{1, 2, 3} {
		for room := 1; room <= 4; room++ {
			number := floor*100 + room
			venues = append(venues, Venue{
				ID:       fmt.Sprintf("room-%d", number),
				Name:     fmt.Sprintf("%d號室", number),
				Category: CategoryClassroom,
				Capacity: 30,
			})
		}
	}
	return append(venues,
		Venue{ID: "music-room", Name: "音樂室", Category: CategorySpecial, Capacity: 20},
		Venue{ID: "computer-room", Name: "電腦室", Category: CategorySpecial, Capacity: 40},
		Venue{ID: "activity-room", Name: "活動室", Category: CategorySpecial, Capacity: 50},
		Venue{ID: "english-room", Name: "英語室", Category: CategorySpecial, Capacity: 25},
		Venue{ID: "playground", Name: "操場", Category: CategoryOutdoor, Capacity: 200},
		Venue{ID: "auditorium", Name: "禮堂", Category: CategoryLarge, Capacity: 300},
		Venue{ID: "squash-court", Name: "壁球室", Category: CategorySport, Capacity: 4},
		Venue{ID: "esports-room", Name: "電競室", Category: CategorySpecial, Capacity: 20},
		Venue{ID: "counseling-room", Name: "輔導室", Category: CategorySpecial, Capacity: 10},
	)
}

// defaultAliases are the synonyms people use for the special rooms.
// No alias may be a substring of another venue's alias.
var defaultAliases = map[string][]string{
	"music-room":      {"音樂", "音樂房", "琴房", "music room", "music"},
	"computer-room":   {"電腦", "電腦房", "IT室", "computer room", "computer lab"},
	"activity-room":   {"活動", "活動房", "activity room"},
	"english-room":    {"英語", "英文室", "英語房", "english room"},
	"playground":      {"操場", "運動場", "playground"},
	"auditorium":      {"禮堂", "大禮堂", "演講廳", "hall", "auditorium"},
	"squash-court":    {"壁球", "壁球場", "squash"},
	"esports-room":    {"電競", "電競房", "esports", "e-sports"},
	"counseling-room": {"輔導", "輔導房", "社工室", "counseling"},
}

// Default returns the catalog of the school's venues.
func Default() *Catalog {
	return NewCatalog(defaultVenues(), defaultAliases)
}
