package mapdetect

// ExistenceEntry records the map/difficulty implied by the mere presence of
// a uniquely identifying NPC in a combat.
type ExistenceEntry struct {
	Map        string
	Difficulty string
}

// existenceTable maps an NPC entity name (as it appears inside a "C[<num>
// Name]" id) to the map/difficulty it alone identifies. Transcribed from
// the reference detector's identification table.
var existenceTable = map[string]ExistenceEntry{
	"Space_Borg_Battleship_Raidisode_Sibrian_Elite_Initial":        {"Infected Space", "Any"},
	"Space_Borg_Dreadnought_Raidisode_Sibrian_Final_Boss":          {"Infected Space", "Any"},
	"Mission_Space_Romulan_Colony_Flagship_Lleiset":                {"Azure Nebula Rescue", "Any"},
	"Space_Klingon_Dreadnought_Dsc_Sarcophagus":                    {"Battle At The Binary Stars", "Any"},
	"Event_Procyon_5_Queue_Krenim_Dreadnaught_Annorax":             {"Battle At Procyon V", "Any"},
	"Mission_Space_Borg_Queen_Diamond_Brg_Queue_Liberation":        {"Borg Disconnected", "Any"},
	"Mission_Starbase_Mirror_Ds9_Mu_Queue":                         {"Counterpoint", "Any"},
	"Space_Crystalline_Entity_2018":                                {"Crystalline Entity", "Any"},
	"Event_Ico_Qonos_Space_Herald_Dreadnaught":                     {"Gateway To Grethor", "Any"},
	"Mission_Space_Federation_Science_Herald_Sphere":                {"Herald Sphere", "Any"},
	"Msn_Dsc_Priors_System_Tfo_Orbital_Platform_1_Fed_Dsc":         {"Operation Riposte", "Any"},
	"Space_Borg_Dreadnought_R02":                                   {"Cure Found", "Any"},
	"Space_Klingon_Tos_X3_Battlecruiser":                           {"Days Of Doom", "Any"},
	"Msn_Luk_Colony_Dranuur_Queue_System_Upgradeable_Satellite":    {"Dranuur Gauntlet", "Any"},
	"Space_Borg_Dreadnought_Raidisode_Khitomer_Intro_Boss":         {"Khitomer Space", "Any"},
	"Mission_Spire_Space_Voth_Frigate":                             {"Storming The Spire", "Any"},
	"Space_Drantzuli_Alpha_Battleship":                             {"Swarm", "Any"},
	"Mission_Beta_Lankal_Destructible_Reactor":                     {"To Hell With Honor", "Any"},
	"Space_Federation_Dreadnought_Jupiter_Class_Carrier":           {"Gravity Kills", "Any"},
	"Msn_Luk_Hypermass_Queue_System_Tzk_Protomatter_Facility":      {"Gravity Kills", "Any"},
	"Space_Borg_Dreadnought_Hive_Intro":                            {"Hive Space", "Any"},
	"Ground_Federation_Capt_Mirror_Runabout_Tfo":                   {"Operation Wolf", "Normal"},
	"Bluegills_Ground_Boss":                                        {"Bug Hunt", "Any"},
	"Msn_Edren_Queue_Ground_Gorn_Lt_Tos_Range_Rock":                {"Miner Instabilities", "Any"},
	"Msn_Ground_Capt_Mirror_Janeway_Boss_Unkillable":               {"Jupiter Station Showdown", "Any"},
	"Mission_Event_Tholian_Invasion_Ext_Boss":                      {"Nukara Prime: Transdimensional Tactics", "Any"},
	"Space_Borg_Dreadnought_Wolf359":                                {"Battle of Wolf 359", "Any"},
	"Snowman_Q_Boss_Msn_Snowglobe":                                 {"Winter Invasion", "Normal"},
}

type deathRequirement struct {
	entity string
	count  int
}

type difficultyDeaths struct {
	difficulty   string
	requirements []deathRequirement
}

// deathCountsByMap holds, per map, the ascending-difficulty ordered death
// count fingerprints. Order matters: a higher difficulty's requirements are
// checked after lower ones so the highest confirmed match wins, per the
// reference detector's own ordering comment.
var deathCountsByMap = map[string][]difficultyDeaths{
	"Infected Space": {
		{"Advanced", []deathRequirement{
			{"Space_Borg_Battleship_Raidisode", 5},
			{"Space_Borg_Cruiser_Raidisode", 6},
			{"Mission_Borgraid1_Transwarp_02", 1},
			{"Space_Borg_Dreadnought_Raidisode_Sibrian_Final_Boss", 1},
		}},
		{"Elite", []deathRequirement{
			{"Space_Borg_Battleship_Raidisode_Sibrian_Elite_Initial", 2},
			{"Space_Borg_Dreadnought_Raidisode_Sibrian_Initial_Boss", 1},
			{"Space_Borg_Cruiser_Raidisode_Sibrian_Elite_Initial", 4},
			{"Space_Borg_Battleship_Raidisode", 2},
			{"Mission_Borgraid1_Transwarp_02", 1},
			{"Space_Borg_Dreadnought_Raidisode_Sibrian_Final_Boss", 1},
		}},
	},
	"Cure Found": {
		{"Advanced", []deathRequirement{
			{"Space_Borg_Battleship_Raidisode_Cure", 3},
			{"Mission_Cure_Healer_Mini_Trans_02", 18},
			{"Space_Borg_Cruiser_Raidisode_Cure", 3},
			{"Space_Borg_Cruiser_Raidisode", 2},
			{"Space_Borg_Dreadnought_R02", 1},
			{"Space_Klingon_Raider_Pet_Borg_Carrier_Advanced", 0},
		}},
		{"Elite", []deathRequirement{
			{"Space_Borg_Battleship_Raidisode_Cure", 3},
			{"Mission_Cure_Healer_Mini_Trans_02", 18},
			{"Space_Borg_Cruiser_Raidisode_Cure", 3},
			{"Space_Borg_Cruiser_Raidisode", 2},
			{"Space_Borg_Dreadnought_R02", 1},
			{"Space_Klingon_Fighter_Pet_Borg_Elite", 0},
		}},
	},
	"Khitomer Space": {
		{"Advanced", []deathRequirement{
			{"Space_Borg_Dreadnought_Raidisode_Khitomer_Intro_Boss", 1},
			{"Mission_Raidisode03_Donatra_Borg_Scimitar", 1},
			{"Mission_Borgraid1_Transwarp_02", 2},
			{"Space_Borg_Battleship_Raidisode", 4},
			{"Mission_Borgraid1_Comm_Array", 4},
			{"Space_Borg_Dreadnought_Raidisode", 0},
		}},
		{"Elite", []deathRequirement{
			{"Space_Borg_Dreadnought_Raidisode_Khitomer_Intro_Boss", 1},
			{"Mission_Raidisode03_Donatra_Borg_Scimitar", 1},
			{"Mission_Borgraid1_Transwarp_02", 2},
			{"Space_Borg_Battleship_Raidisode", 4},
			{"Mission_Borgraid1_Comm_Array", 4},
			{"Space_Borg_Dreadnought_Raidisode", 4},
		}},
	},
	"Hive Space": {
		{"Advanced", []deathRequirement{
			{"Mission_Space_Borg_Queen_Diamond", 1},
			{"Mission_Space_Borg_Battleship_Queen_2_0f_2", 1},
			{"Mission_Space_Borg_Battleship_Queen_1_0f_2", 1},
		}},
		{"Elite", []deathRequirement{
			{"Mission_Space_Borg_Queen_Diamond", 1},
			{"Mission_Space_Borg_Battleship_Queen_2_0f_2", 1},
			{"Mission_Space_Borg_Battleship_Queen_1_0f_2", 1},
		}},
	},
	"Bug Hunt": {
		{"Elite", []deathRequirement{
			{"Msn_Dlt_Bluegill_Hunt_Queue_Ground_Ens", 3},
			{"Bluegills_Ground_Cdr", 26},
			{"Bluegills_Ground_Capt", 1},
			{"Bluegills_Ground_Boss", 1},
		}},
	},
	"Jupiter Station Showdown": {
		{"Elite", []deathRequirement{
			{"Msn_Assimilated_Fed_Odyssey_Ground_Borg_Ens_Melee", 27},
			{"Msn_Assimilated_Fed_Odyssey_Ground_Borg_Lt_Range", 17},
			{"Msn_Assimilated_Fed_Odyssey_Ground_Borg_Cdr_Melee", 2},
		}},
	},
	"Miner Instabilities": {
		{"Elite", []deathRequirement{
			{"Ground_Nakuhl_Capt_Range_Male", 1},
		}},
	},
	"Battle of Wolf 359": {
		{"Elite", []deathRequirement{
			{"Space_Borg_Cruiser_Wolf359", 3},
		}},
	},
}

type hullRequirement struct {
	entity    string
	threshold float64
}

type difficultyHull struct {
	difficulty   string
	requirements []hullRequirement
}

// hullCountsByMap refines a death-count match using median hull damage
// taken by specific entities, again ordered ascending by difficulty.
var hullCountsByMap = map[string][]difficultyHull{
	"Hive Space": {
		{"Advanced", []hullRequirement{
			{"Space_Borg_Cruiser_Hive_Intro1", 461582},
			{"Space_Borg_Cruiser_Hive_Intro2", 461582},
			{"Space_Borg_Battleship_Hive_Intro", 576977},
			{"Space_Borg_Dreadnought_Hive_Intro", 1707034},
		}},
		{"Elite", []hullRequirement{
			{"Space_Borg_Cruiser_Hive_Intro1", 2165239},
			{"Space_Borg_Cruiser_Hive_Intro2", 2165239},
			{"Space_Borg_Battleship_Hive_Intro", 2706549},
			{"Space_Borg_Dreadnought_Hive_Intro", 8007542},
		}},
	},
	"Jupiter Station Showdown": {
		{"Elite", []hullRequirement{
			{"Msn_Assimilated_Fed_Odyssey_Ground_Borg_Ens_Melee", 2605},
			{"Msn_Assimilated_Fed_Odyssey_Ground_Borg_Lt_Range", 3439},
		}},
	},
	"Bug Hunt": {
		{"Elite", []hullRequirement{
			{"Bluegills_Ground_Boss", 449432},
		}},
	},
	"Miner Instabilities": {
		{"Elite", []hullRequirement{
			{"Ground_Romulan_Tos_Cdr_Range", 6513},
			{"Ground_Nakuhl_Capt_Range_Male", 20843},
		}},
	},
	"Battle of Wolf 359": {
		{"Elite", []hullRequirement{
			{"Space_Borg_Turret_Medium_Plasma_Torpedo_Wolf359", 2081960},
			{"Space_Borg_Turret_Medium_Plasma_Beam_Wolf359", 2081960},
			{"Space_Borg_Turret_Medium_Tractor_Beam_Wolf359", 2081960},
			{"Space_Borg_Wolf359_Escape_Pod_Tractor_Beam", 2081960},
			{"Space_Borg_Frigate_Wolf359", 2081960},
			{"Space_Borg_Cruiser_Wolf359", 0},
		}},
	},
}

// buildDetectionAbilities maps an ability name substring to the build label
// it implies. Order matters: later matches in this table win when a
// player's ability log contains more than one recognized ability, matching
// the reference detector's unconditional overwrite loop.
var buildDetectionAbilities = []struct {
	ability string
	build   string
}{
	{"Surgical Strikes III", "Surgical Strikes"},
	{"Reroute Reserves to Weapons", "Reroute Reserves to Weapons"},
	{"Exceed Rated Limits", "Exceed Rated Limits"},
	{"Rapid Fire III", "Cannons: Rapid Fire"},
	{"Scatter Volley III", "Cannons: Scatter Volley"},
	{"Overload III", "Beams: Overload"},
	{"Fire at Will III", "Beams: Fire At Will"},
	{"Isolytic Tear", "Kinetic"},
	{"Electrified Anomalies", "Exotic"},
	{"Deteriorating Secondary Deflector", "Exotic"},
	{"Gravity Well III", "Exotic"},
	{"Greater Than The Sum", "Support"},
	{"Rapid Fire II", "Cannons: Rapid Fire"},
	{"Scatter Volley II", "Cannons: Scatter Volley"},
	{"Fire at Will II", "Beams: Fire At Will"},
	{"Thalaron Pulse", "Thalaron Pulse"},
}
