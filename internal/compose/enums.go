package compose

// Wire sentinels accepted by the public API. "random" asks for a uniform
// pick (or, for atmosphere, omission); "none" drops the interior/exterior
// clause.
const (
	SentinelRandom = "random"
	SentinelNone   = "none"
)

// Architects lists every architect the prompt composer may name. The
// spellings are fixed: they are tuned against the downstream model and
// must not be normalized.
var Architects = []string{
	"Greg Lynn", "Eric Owen Moss", "Peter Eisenman", "Jeanne Gang", "Jon Jerde",
	"Rafael Vinoly", "Alejandro Aravena", "Oscar Niemeyer", "Luis Barragan",
	"Frank Gehry", "Jacques Herzog, Pierre de Meuron", "Peter Zumthor", "Mario Botta",
	"Bjarke İngels", "Alvar Aalto", "Eero Saarinen", "Rem Koolhaas", "Daniel Libeskind",
	"Anna Heringer", "Glenn Murcutt", "Nicholas Grimshaw", "Norman Foster",
	"Yvonne Farrell; Shelley McNamara", "Jean Nouvel", "Carlo Scarpa", "Aldo Rossi",
	"Richard Rogers", "Massimiliano Fuksas", "Renzo Piano", "Lina Bo Bardi",
	"Ricardo Bofill", "Enric Ruiz Geli", "Santiago Calatravva", "Manuel Aires Mateus",
	"Alvaro Siza Vieira", "Tadao Ando", "Kenzo Tange", "Kengo Kuma", "Kazuyo Seijama",
	"Shigeru Ban", "Kisho Kurokawa", "Ieoh Ming Pei", "Wang Shu", "Toyo Ito",
	"Vo Trong Nghia", "Balkrishna Vithaldas Doshi", "Diebedo Francis Kere",
	"Christian de Portzamparc", "Zaha Hadid", "Marco Zanuso", "Moshe Safdie",
	"Sedad Hakkı Eldem", "Behruz Çinici", "Şevki Vanlı",
}

// Regions holds the continental regions selectable for a prompt.
var Regions = []string{
	"Africa", "Asia", "Europe", "North America", "Oceania", "South America",
}

// BuildingTypes holds the building category enumeration.
var BuildingTypes = []string{
	"Residential Architecture", "Refurbishment", "Cultural Architecture",
	"Commercial And Offices", "Hospitality Architecture", "Public Architecture",
	"Healthcare Architecture", "Educational Architecture", "Sports Architecture",
	"Religious Architecture", "Industrial And Infrastructure", "Landscape And Urbanism",
}

// InteriorExteriorValues are the accepted interior/exterior flags, sentinel
// excluded.
var InteriorExteriorValues = []string{"interior", "exterior"}

// atmosphereSentences maps each atmospheric condition to the long-form
// clause appended to the prompt.
var atmosphereSentences = map[string]string{
	"Cloudy":   "A gloomy cloudy scene with dark clouds looming overhead, creating a mysterious atmosphere",
	"Rainy":    "A refreshing rainy day filled with soft raindrops and a tranquil ambiance",
	"Snowy":    "A magical snowy landscape, where delicate snowflakes fall gently from the sky",
	"Evening":  "A serene evening scene as the sun dips below the horizon",
	"Morning":  "A fresh morning atmosphere filled with the soft glow of dawn",
	"Overcast": "A moody overcast day where heavy gray clouds hang low in the sky",
	"Sunset":   "A breathtaking sunset painting the sky in vibrant colors",
	"Clear":    "A bright, clear day with a deep blue sky stretching endlessly overhead",
}

// Atmospheres lists the atmosphere keys in their canonical order.
var Atmospheres = []string{
	"Cloudy", "Rainy", "Snowy", "Evening", "Morning", "Overcast", "Sunset", "Clear",
}

// fixedStyleClause is appended to every composed prompt.
const fixedStyleClause = "(realistic architectural photography, architectural photography, realistic photography, realistic, photograph, ultra-high resolution, architecture, building, building photography, high quality)"
