package timezone

// stateToZone covers all 50 states plus DC, keyed by both two-letter code
// and full name (uppercase).
var stateToZone = map[string]Zone{
	// Eastern
	"CT": Eastern, "DC": Eastern, "DE": Eastern, "FL": Eastern,
	"GA": Eastern, "IN": Eastern, "MA": Eastern, "MD": Eastern,
	"ME": Eastern, "MI": Eastern, "NC": Eastern, "NH": Eastern,
	"NJ": Eastern, "NY": Eastern, "OH": Eastern, "PA": Eastern,
	"RI": Eastern, "SC": Eastern, "VA": Eastern, "VT": Eastern,
	"WV": Eastern,
	"CONNECTICUT": Eastern, "DISTRICT OF COLUMBIA": Eastern,
	"DELAWARE": Eastern, "FLORIDA": Eastern, "GEORGIA": Eastern,
	"INDIANA": Eastern, "MASSACHUSETTS": Eastern, "MARYLAND": Eastern,
	"MAINE": Eastern, "MICHIGAN": Eastern, "NORTH CAROLINA": Eastern,
	"NEW HAMPSHIRE": Eastern, "NEW JERSEY": Eastern, "NEW YORK": Eastern,
	"OHIO": Eastern, "PENNSYLVANIA": Eastern, "RHODE ISLAND": Eastern,
	"SOUTH CAROLINA": Eastern, "VIRGINIA": Eastern, "VERMONT": Eastern,
	"WEST VIRGINIA": Eastern,

	// Central
	"AL": Central, "AR": Central, "IA": Central, "IL": Central,
	"KS": Central, "KY": Central, "LA": Central, "MN": Central,
	"MO": Central, "MS": Central, "ND": Central, "NE": Central,
	"OK": Central, "SD": Central, "TN": Central, "TX": Central,
	"WI": Central,
	"ALABAMA": Central, "ARKANSAS": Central, "IOWA": Central,
	"ILLINOIS": Central, "KANSAS": Central, "KENTUCKY": Central,
	"LOUISIANA": Central, "MINNESOTA": Central, "MISSOURI": Central,
	"MISSISSIPPI": Central, "NORTH DAKOTA": Central, "NEBRASKA": Central,
	"OKLAHOMA": Central, "SOUTH DAKOTA": Central, "TENNESSEE": Central,
	"TEXAS": Central, "WISCONSIN": Central,

	// Mountain
	"AZ": Mountain, "CO": Mountain, "ID": Mountain, "MT": Mountain,
	"NM": Mountain, "UT": Mountain, "WY": Mountain,
	"ARIZONA": Mountain, "COLORADO": Mountain, "IDAHO": Mountain,
	"MONTANA": Mountain, "NEW MEXICO": Mountain, "UTAH": Mountain,
	"WYOMING": Mountain,

	// Pacific
	"CA": Pacific, "NV": Pacific, "OR": Pacific, "WA": Pacific,
	"CALIFORNIA": Pacific, "NEVADA": Pacific, "OREGON": Pacific,
	"WASHINGTON": Pacific,

	// Hawaii / Alaska
	"HI": Hawaii, "HAWAII": Hawaii,
	"AK": Alaska, "ALASKA": Alaska,
}

// areaCodeToZone covers the common US area codes across the four contiguous
// zones. Codes straddling a zone boundary (385, 720) are bucketed Mountain.
var areaCodeToZone = map[string]Zone{
	// Eastern
	"201": Eastern, "202": Eastern, "203": Eastern, "207": Eastern,
	"212": Eastern, "215": Eastern, "216": Eastern, "239": Eastern,
	"240": Eastern, "248": Eastern, "267": Eastern, "301": Eastern,
	"302": Eastern, "305": Eastern, "313": Eastern, "315": Eastern,
	"321": Eastern, "336": Eastern, "347": Eastern, "352": Eastern,
	"386": Eastern, "401": Eastern, "404": Eastern, "407": Eastern,
	"410": Eastern, "412": Eastern, "413": Eastern, "434": Eastern,
	"440": Eastern, "443": Eastern, "484": Eastern, "508": Eastern,
	"513": Eastern, "516": Eastern, "518": Eastern, "540": Eastern,
	"551": Eastern, "561": Eastern, "570": Eastern, "571": Eastern,
	"585": Eastern, "586": Eastern, "603": Eastern, "609": Eastern,
	"610": Eastern, "614": Eastern, "617": Eastern, "631": Eastern,
	"646": Eastern, "678": Eastern, "703": Eastern, "704": Eastern,
	"706": Eastern, "716": Eastern, "718": Eastern, "732": Eastern,
	"740": Eastern, "754": Eastern, "757": Eastern, "770": Eastern,
	"772": Eastern, "774": Eastern, "781": Eastern, "786": Eastern,
	"802": Eastern, "803": Eastern, "804": Eastern, "813": Eastern,
	"814": Eastern, "828": Eastern, "845": Eastern, "848": Eastern,
	"856": Eastern, "857": Eastern, "860": Eastern, "862": Eastern,
	"863": Eastern, "904": Eastern, "908": Eastern, "910": Eastern,
	"914": Eastern, "917": Eastern, "919": Eastern, "941": Eastern,
	"954": Eastern, "973": Eastern, "978": Eastern,

	// Central
	"205": Central, "210": Central, "214": Central, "217": Central,
	"219": Central, "224": Central, "225": Central, "228": Central,
	"254": Central, "256": Central, "262": Central, "281": Central,
	"309": Central, "312": Central, "314": Central, "316": Central,
	"317": Central, "318": Central, "319": Central, "320": Central,
	"331": Central, "334": Central, "346": Central, "361": Central,
	"402": Central, "405": Central, "409": Central, "414": Central,
	"417": Central, "430": Central, "432": Central, "456": Central,
	"469": Central, "479": Central, "501": Central, "502": Central,
	"504": Central, "507": Central, "512": Central, "515": Central,
	"531": Central, "534": Central, "563": Central, "573": Central,
	"601": Central, "608": Central, "612": Central, "615": Central,
	"618": Central, "620": Central, "630": Central, "636": Central,
	"641": Central, "651": Central, "660": Central, "662": Central,
	"682": Central, "701": Central, "708": Central, "713": Central,
	"715": Central, "717": Central, "731": Central, "737": Central,
	"743": Central, "763": Central, "769": Central, "773": Central,
	"779": Central, "806": Central, "815": Central, "816": Central,
	"817": Central, "830": Central, "832": Central, "847": Central,
	"850": Central, "870": Central, "872": Central, "901": Central,
	"903": Central, "913": Central, "915": Central, "920": Central,
	"936": Central, "940": Central, "952": Central, "956": Central,
	"972": Central, "979": Central,

	// Mountain
	"303": Mountain, "307": Mountain, "385": Mountain, "406": Mountain,
	"435": Mountain, "480": Mountain, "505": Mountain, "520": Mountain,
	"575": Mountain, "602": Mountain, "623": Mountain, "719": Mountain,
	"720": Mountain, "801": Mountain, "928": Mountain,

	// Pacific
	"206": Pacific, "209": Pacific, "213": Pacific, "253": Pacific,
	"310": Pacific, "323": Pacific, "360": Pacific, "408": Pacific,
	"415": Pacific, "424": Pacific, "425": Pacific, "442": Pacific,
	"503": Pacific, "509": Pacific, "510": Pacific, "530": Pacific,
	"541": Pacific, "559": Pacific, "562": Pacific, "619": Pacific,
	"626": Pacific, "628": Pacific, "650": Pacific, "657": Pacific,
	"661": Pacific, "669": Pacific, "702": Pacific, "707": Pacific,
	"714": Pacific, "725": Pacific, "747": Pacific, "760": Pacific,
	"775": Pacific, "805": Pacific, "818": Pacific, "831": Pacific,
	"858": Pacific, "909": Pacific, "916": Pacific, "925": Pacific,
	"949": Pacific, "951": Pacific, "971": Pacific,
}
