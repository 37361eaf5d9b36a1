package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var products = []string{
	"Diamond Necklace Set", "Gold Bangles (24ct)", "Bridal Lehenga (Designer)",
	"Surat Textile Bulk Order", "Polished Diamonds (10ct)", "Antique Furniture Set",
	"Luxury Home Decor", "Export Quality Saree Lot", "Solitaire Ring", "Real Jarod Set",
	"Kundan Set (Heavy)", "Rose Gold Watch", "Platinum Ring Pair", "Designer Chaniya Choli",
}

var (
	areas = []string{
		"Mota Varachha", "Nana Varachha", "Katargam", "Dabholi", "Singanpor", "Ved Road", "Amroli",
		"Uttran", "Kosad", "Sarthana", "Simada", "Yogi Chowk", "Punagam", "Kapodra", "Mini Bazar",
		"Mahidharpura", "Adajan", "Pal Gam", "Rander", "Piplod", "Vesu", "City Light", "Bhatar",
		"Althan", "Udhna", "Limbayat", "Dindoli", "Godadara", "Kamrej", "Pasodara", "Athwa Lines",
	}
	societies = []string{
		"Gokuldham Society", "Vrundavan Residency", "Khodiyar Nagar", "Sita Nagar", "Shiv Darshan Apt",
		"Royal Heights", "Silver Palace", "Diamond Nagar", "Angel Residency", "Shyam Dham Society",
		"Bhakti Nagar", "Gopinath Society", "Madhav Park", "Krushna Kunj", "Sardar Patel Society",
		"Green City", "Nandanvan Society", "Avadh Residency", "Rajhans Point", "Sahajanand City",
	}
	landmarks = []string{
		"Dabholi Char Rasta", "Gajera Circle", "Singanpor Char Rasta", "Lalita Chokdi",
		"Hirabaug Circle", "Kapodra Patiya", "Rachana Circle", "Sarthana Jakatnaka", "Simada Naka",
		"Yogi Chowk", "Sudama Chowk", "Kargil Chowk", "Mota Varachha Lake", "Amroli Bridge",
		"Gujarat Gas Circle", "L.P. Savani Circle", "Pal RTO", "Cable Bridge", "VIP Road",
		"VR Mall", "Parle Point", "Bhatar Char Rasta", "Surat Airport",
	}
)

var (
	leuvaSurnames = []string{
		"Patel", "Sojitra", "Vaghani", "Kakadiya", "Dhameliya", "Kathiriya", "Gondaliya",
		"Mangukiya", "Radadiya", "Savani", "Gajera", "Kevadiya", "Bhalodia", "Dholakia",
		"Sanghani", "Virani", "Lathiya", "Dhanani", "Thummar", "Dobariya", "Sutariya",
		"Golakiya", "Monpara", "Italiya", "Kanani", "Lakhani", "Malaviya", "Vekariya",
	}
	kadvaSurnames = []string{
		"Patel", "Ukani", "Dadhania", "Fultariya", "Detroja", "Adroja", "Kaila", "Amrutiya",
		"Aghara", "Jivani", "Varmora", "Faldu", "Kanjariya", "Makasana", "Chhatrola",
		"Dalsaniya", "Ghodasara", "Marvania", "Panara", "Santoki", "Vasoya", "Zala",
	}
	devotionalNames = []string{
		"Bhakti", "Haripriya", "Radha", "Laxmi", "Sarju", "Yamuna", "Gopi", "Nandini",
		"Mukti", "Premvati", "Smruti", "Krupali", "Radhika", "Shradha", "Vandana",
	}
	traditionalNames = []string{
		"Savita", "Kanta", "Shanta", "Rama", "Leela", "Ganga", "Urmila", "Hansa", "Manju",
		"Jaya", "Rekha", "Nirmala", "Pushpa", "Madhu", "Kamla", "Parvati", "Jashu", "Saroj",
		"Champa", "Bhavna", "Daksha", "Geeta", "Jyoti", "Kalpana", "Meena", "Usha", "Varsha",
	}
	modernNames = []string{
		"Diya", "Jiya", "Dhruvi", "Heer", "Pari", "Aarya", "Krisha", "Khushi", "Niyati",
		"Riya", "Siya", "Mahi", "Jhanvi", "Prisha", "Kiara", "Isha", "Suhani", "Mansi",
		"Drashti", "Kinjal", "Priya", "Rutvi", "Foram", "Jinal", "Shruti", "Bansi", "Nidhi",
		"Tanvi", "Yesha", "Aarohi", "Dhwani", "Freya", "Janki", "Navya", "Riddhi", "Zeel",
	}
	darbarNames = []string{
		"Sandhiyaba", "Rajba", "Monghiba", "Jijiba", "Hirba", "Panba", "Kashiba", "Sonba",
		"Gangaba", "Jethiba", "Santokba", "Hetalba", "Jayaba", "Kirtiba", "Pushpaba",
		"Kunvarba", "Motiba", "Radhaba", "Ratanba", "Divyaba", "Kinjalba", "Krishnaba",
	}
	menNames = []string{
		"Imran", "Farooq", "Ahmed", "Salman", "Rafiq", "Yusuf", "Zaid", "Bilal", "Sohail",
		"Firoz", "Abdul", "Rahim", "Ismail", "Ibrahim", "Suleman", "Osman", "Yakub",
	}
)

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}

func withSuffix(name, suffix string) string {
	if strings.HasSuffix(strings.ToLower(name), suffix) {
		return name
	}

	return name + suffix
}

// Name returns a random customer name in "Surname Firstname" form.
func Name(rng *rand.Rand) string {
	if rng.Float64() < 0.2 {
		return fmt.Sprintf("Jadeja %s %s", pick(rng, darbarNames), withSuffix(pick(rng, menNames), "bhai"))
	}

	surnames := kadvaSurnames
	if rng.Float64() < 0.5 {
		surnames = leuvaSurnames
	}

	var first string

	switch r := rng.Float64(); {
	case r < 0.25:
		first = pick(rng, devotionalNames)
		if rng.Float64() < 0.7 {
			first = withSuffix(first, "ben")
		}
	case r < 0.6:
		first = withSuffix(pick(rng, traditionalNames), "ben")
	default:
		first = pick(rng, modernNames)
	}

	return pick(rng, surnames) + " " + first
}

// Address returns a random Surat street address.
func Address(rng *rand.Rand) string {
	block := rune('A' + rng.IntN(5))

	return fmt.Sprintf("%c-%d, %s, %s, %s, Surat",
		block, 1+rng.IntN(500), pick(rng, societies), pick(rng, landmarks), pick(rng, areas))
}

func Product(rng *rand.Rand) string {
	return pick(rng, products)
}
