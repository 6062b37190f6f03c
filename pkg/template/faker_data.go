package template

// emailDomains is the fixed five-domain set randomEmail picks from.
var emailDomains = []string{
	"example.com",
	"test.com",
	"mail.com",
	"demo.org",
	"sample.net",
}

// firstNames and lastNames are the two fixed lists randomName concatenates.
var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John",
	"Jennifer", "Michael", "Linda", "William", "Elizabeth",
	"David", "Barbara", "Richard", "Susan", "Joseph",
	"Jessica", "Thomas", "Sarah", "Charles", "Karen",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones",
	"Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin",
}
