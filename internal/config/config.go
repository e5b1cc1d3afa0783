// Package config loads deadgrid tuning and server settings from YAML
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/deadgrid/internal/errors"
)

// Config is the full configuration file
type Config struct {
	Game   `yaml:",inline"`
	Server Server `yaml:"server" json:"-"`
	Events Events `yaml:"events" json:"-"`
}

// Game holds everything that influences simulation outcomes. It is
// journaled with every playthrough so replays use the same rules.
type Game struct {
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Combat     Combat     `yaml:"combat" json:"combat"`
	Threat     Threat     `yaml:"threat" json:"threat"`
	Economy    Economy    `yaml:"economy" json:"economy"`
	Weather    Weather    `yaml:"weather" json:"weather"`
	Night      Night      `yaml:"night" json:"night"`
}

// Simulation holds world size, pacing and spawn tuning
type Simulation struct {
	Width       int `yaml:"width" json:"width"`
	Height      int `yaml:"height" json:"height"`
	TurnsPerDay int `yaml:"turns_per_day" json:"turns_per_day"`

	PlayerHealth    int     `yaml:"player_health" json:"player_health"`
	StartSurvivors  int     `yaml:"start_survivors" json:"start_survivors"`
	StartFood       int     `yaml:"start_food" json:"start_food"`
	StartWater      int     `yaml:"start_water" json:"start_water"`
	StartMedicine   int     `yaml:"start_medicine" json:"start_medicine"`
	StartAmmo       int     `yaml:"start_ammo" json:"start_ammo"`
	StartMaterials  int     `yaml:"start_materials" json:"start_materials"`
	ObstacleDensity float64 `yaml:"obstacle_density" json:"obstacle_density"`

	InitialZombies   int `yaml:"initial_zombies" json:"initial_zombies"`
	InitialNPCs      int `yaml:"initial_npcs" json:"initial_npcs"`
	InitialLoot      int `yaml:"initial_loot" json:"initial_loot"`
	InitialBuildings int `yaml:"initial_buildings" json:"initial_buildings"`

	EventChance       float64 `yaml:"event_chance" json:"event_chance"`
	WaveBaseChance    float64 `yaml:"wave_base_chance" json:"wave_base_chance"`
	WaveDailyIncrease float64 `yaml:"wave_daily_increase" json:"wave_daily_increase"`
	WaveMaxChance     float64 `yaml:"wave_max_chance" json:"wave_max_chance"`
	NPCSpawnChance    float64 `yaml:"npc_spawn_chance" json:"npc_spawn_chance"`
	LootSpawnChance   float64 `yaml:"loot_spawn_chance" json:"loot_spawn_chance"`
	SpawnMinDistance  int     `yaml:"spawn_min_distance" json:"spawn_min_distance"`
}

// Combat holds damage bands and costs
type Combat struct {
	MeleeBase        int     `yaml:"melee_base" json:"melee_base"`
	MeleeVariance    int     `yaml:"melee_variance" json:"melee_variance"`
	NPCMeleeVariance int     `yaml:"npc_melee_variance" json:"npc_melee_variance"`
	WeaponBonus      int     `yaml:"weapon_bonus" json:"weapon_bonus"`
	CounterChance    float64 `yaml:"counter_chance" json:"counter_chance"`
	CounterDamage    int     `yaml:"counter_damage" json:"counter_damage"`
	RangedCost       int     `yaml:"ranged_cost" json:"ranged_cost"`
	RangedRange      int     `yaml:"ranged_range" json:"ranged_range"`
	RangedMin        int     `yaml:"ranged_min" json:"ranged_min"`
	RangedMax        int     `yaml:"ranged_max" json:"ranged_max"`
	NPCDamageBase    int     `yaml:"npc_damage_base" json:"npc_damage_base"`
	BarricadeRecoil  int     `yaml:"barricade_recoil" json:"barricade_recoil"`
	AttackRepPenalty int     `yaml:"attack_rep_penalty" json:"attack_rep_penalty"`
	KillRepPenalty   int     `yaml:"kill_rep_penalty" json:"kill_rep_penalty"`
}

// Threat holds AI radii and wander tuning
type Threat struct {
	AlwaysAwareRadius int     `yaml:"always_aware_radius" json:"always_aware_radius"`
	WanderChance      float64 `yaml:"wander_chance" json:"wander_chance"`
	NPCEngageRadius   int     `yaml:"npc_engage_radius" json:"npc_engage_radius"`
	NPCFleeRadius     int     `yaml:"npc_flee_radius" json:"npc_flee_radius"`
}

// Economy holds consumption and camp costs
type Economy struct {
	CasualtyChance     float64 `yaml:"casualty_chance" json:"casualty_chance"`
	RecruitFood        int     `yaml:"recruit_food" json:"recruit_food"`
	RecruitWater       int     `yaml:"recruit_water" json:"recruit_water"`
	ReinforceMaterials int     `yaml:"reinforce_materials" json:"reinforce_materials"`
	MedicineHeal       int     `yaml:"medicine_heal" json:"medicine_heal"`
	TradeReputation    int     `yaml:"trade_reputation" json:"trade_reputation"`
	BuildingScavenges  int     `yaml:"building_scavenges" json:"building_scavenges"`
}

// Weather holds the daily sky table and what bad weather does to the
// player's aim. With no fog or storm weight the sky stays clear and costs
// no draw.
type Weather struct {
	ClearWeight      int     `yaml:"clear_weight" json:"clear_weight"`
	FogWeight        int     `yaml:"fog_weight" json:"fog_weight"`
	StormWeight      int     `yaml:"storm_weight" json:"storm_weight"`
	FogHitChance     float64 `yaml:"fog_hit_chance" json:"fog_hit_chance"`
	StormHitChance   float64 `yaml:"storm_hit_chance" json:"storm_hit_chance"`
	StormRangeFactor float64 `yaml:"storm_range_factor" json:"storm_range_factor"`
}

// Night holds the overnight world dynamics rolled at each day boundary.
// A zero value switches the matching effect off.
type Night struct {
	SpreadBase       float64 `yaml:"spread_base" json:"spread_base"`
	SpreadDaily      float64 `yaml:"spread_daily" json:"spread_daily"`
	ZombieCap        int     `yaml:"zombie_cap" json:"zombie_cap"`
	CollapseChance   float64 `yaml:"collapse_chance" json:"collapse_chance"`
	HordeInterval    int     `yaml:"horde_interval" json:"horde_interval"`
	HordeMin         int     `yaml:"horde_min" json:"horde_min"`
	HordeMax         int     `yaml:"horde_max" json:"horde_max"`
	SupplyDropChance float64 `yaml:"supply_drop_chance" json:"supply_drop_chance"`
	CampAttackRadius int     `yaml:"camp_attack_radius" json:"camp_attack_radius"`
}

// Server holds listener and storage settings
type Server struct {
	GRPCPort     int           `yaml:"grpc_port"`
	FeedAddress  string        `yaml:"feed_address"`
	RedisAddress string        `yaml:"redis_address"`
	JournalTTL   time.Duration `yaml:"journal_ttl"`
}

// Events points at an optional extra template pack
type Events struct {
	TemplatePack string `yaml:"template_pack"`
}

// Default returns a configuration that plays a standard game
func Default() *Config {
	return &Config{
		Game: DefaultGame(),
		Server: Server{
			GRPCPort:    50051,
			FeedAddress: ":8080",
			JournalTTL:  72 * time.Hour,
		},
	}
}

// DefaultGame returns the standard rules
func DefaultGame() Game {
	return Game{
		Simulation: Simulation{
			Width:             20,
			Height:            15,
			TurnsPerDay:       15,
			PlayerHealth:      100,
			StartSurvivors:    3,
			StartFood:         50,
			StartWater:        50,
			StartMedicine:     5,
			StartAmmo:         20,
			StartMaterials:    10,
			ObstacleDensity:   0.08,
			InitialZombies:    5,
			InitialNPCs:       2,
			InitialLoot:       4,
			InitialBuildings:  3,
			EventChance:       0.5,
			WaveBaseChance:    0.3,
			WaveDailyIncrease: 0.05,
			WaveMaxChance:     0.8,
			NPCSpawnChance:    0.3,
			LootSpawnChance:   0.4,
			SpawnMinDistance:  5,
		},
		Combat: Combat{
			MeleeBase:        10,
			MeleeVariance:    10,
			NPCMeleeVariance: 15,
			WeaponBonus:      5,
			CounterChance:    0.3,
			CounterDamage:    5,
			RangedCost:       1,
			RangedRange:      6,
			RangedMin:        15,
			RangedMax:        34,
			NPCDamageBase:    7,
			BarricadeRecoil:  10,
			AttackRepPenalty: 10,
			KillRepPenalty:   5,
		},
		Threat: Threat{
			AlwaysAwareRadius: 2,
			WanderChance:      0.2,
			NPCEngageRadius:   5,
			NPCFleeRadius:     3,
		},
		Economy: Economy{
			CasualtyChance:     0.3,
			RecruitFood:        20,
			RecruitWater:       20,
			ReinforceMaterials: 10,
			MedicineHeal:       30,
			TradeReputation:    2,
			BuildingScavenges:  3,
		},
		Weather: Weather{
			ClearWeight:      60,
			FogWeight:        25,
			StormWeight:      15,
			FogHitChance:     0.7,
			StormHitChance:   0.5,
			StormRangeFactor: 0.8,
		},
		Night: Night{
			SpreadBase:       0.15,
			SpreadDaily:      0.01,
			ZombieCap:        30,
			CollapseChance:   0.02,
			HordeInterval:    7,
			HordeMin:         1,
			HordeMax:         3,
			SupplyDropChance: 0.1,
			CampAttackRadius: 2,
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "parsing config "+path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the full configuration
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	c.Game.validate(vb)
	errors.ValidateRange("server.grpc_port", c.Server.GRPCPort, 1, 65535, vb)
	errors.ValidateRequired("server.feed_address", c.Server.FeedAddress, vb)
	if c.Server.JournalTTL < 0 {
		vb.Field("server.journal_ttl", "must not be negative")
	}
	return vb.Build()
}

// Validate checks only the rules
func (g *Game) Validate() error {
	vb := errors.NewValidationBuilder()
	g.validate(vb)
	return vb.Build()
}

func (g *Game) validate(vb *errors.ValidationBuilder) {
	s := g.Simulation
	errors.ValidateRange("simulation.width", s.Width, 8, 256, vb)
	errors.ValidateRange("simulation.height", s.Height, 8, 256, vb)
	errors.ValidateMin("simulation.turns_per_day", s.TurnsPerDay, 1, vb)
	errors.ValidateMin("simulation.player_health", s.PlayerHealth, 1, vb)
	errors.ValidateMin("simulation.start_survivors", s.StartSurvivors, 0, vb)
	errors.ValidateMin("simulation.start_food", s.StartFood, 0, vb)
	errors.ValidateMin("simulation.start_water", s.StartWater, 0, vb)
	errors.ValidateMin("simulation.start_medicine", s.StartMedicine, 0, vb)
	errors.ValidateMin("simulation.start_ammo", s.StartAmmo, 0, vb)
	errors.ValidateMin("simulation.start_materials", s.StartMaterials, 0, vb)
	errors.ValidateMin("simulation.initial_zombies", s.InitialZombies, 0, vb)
	errors.ValidateMin("simulation.initial_npcs", s.InitialNPCs, 0, vb)
	errors.ValidateMin("simulation.initial_loot", s.InitialLoot, 0, vb)
	errors.ValidateMin("simulation.initial_buildings", s.InitialBuildings, 0, vb)
	errors.ValidateMin("simulation.spawn_min_distance", s.SpawnMinDistance, 0, vb)
	if s.ObstacleDensity < 0 || s.ObstacleDensity > 0.4 {
		vb.Field("simulation.obstacle_density", "must be between 0 and 0.4")
	}
	errors.ValidateProbability("simulation.event_chance", s.EventChance, vb)
	errors.ValidateProbability("simulation.wave_base_chance", s.WaveBaseChance, vb)
	errors.ValidateProbability("simulation.wave_max_chance", s.WaveMaxChance, vb)
	errors.ValidateProbability("simulation.npc_spawn_chance", s.NPCSpawnChance, vb)
	errors.ValidateProbability("simulation.loot_spawn_chance", s.LootSpawnChance, vb)

	c := g.Combat
	errors.ValidateMin("combat.melee_base", c.MeleeBase, 1, vb)
	errors.ValidateMin("combat.melee_variance", c.MeleeVariance, 0, vb)
	errors.ValidateMin("combat.npc_melee_variance", c.NPCMeleeVariance, 0, vb)
	errors.ValidateProbability("combat.counter_chance", c.CounterChance, vb)
	errors.ValidateMin("combat.counter_damage", c.CounterDamage, 0, vb)
	errors.ValidateRange("combat.ranged_cost", c.RangedCost, 1, 5, vb)
	errors.ValidateRange("combat.ranged_range", c.RangedRange, 1, 32, vb)
	errors.ValidateMin("combat.ranged_min", c.RangedMin, 1, vb)
	if c.RangedMax < c.RangedMin {
		vb.Field("combat.ranged_max", "must not be below ranged_min")
	}
	errors.ValidateMin("combat.npc_damage_base", c.NPCDamageBase, 1, vb)

	t := g.Threat
	errors.ValidateMin("threat.always_aware_radius", t.AlwaysAwareRadius, 0, vb)
	errors.ValidateProbability("threat.wander_chance", t.WanderChance, vb)
	errors.ValidateMin("threat.npc_engage_radius", t.NPCEngageRadius, 0, vb)
	errors.ValidateMin("threat.npc_flee_radius", t.NPCFleeRadius, 0, vb)

	e := g.Economy
	errors.ValidateProbability("economy.casualty_chance", e.CasualtyChance, vb)
	errors.ValidateMin("economy.recruit_food", e.RecruitFood, 0, vb)
	errors.ValidateMin("economy.recruit_water", e.RecruitWater, 0, vb)
	errors.ValidateMin("economy.reinforce_materials", e.ReinforceMaterials, 0, vb)
	errors.ValidateMin("economy.building_scavenges", e.BuildingScavenges, 1, vb)

	w := g.Weather
	errors.ValidateMin("weather.clear_weight", w.ClearWeight, 0, vb)
	errors.ValidateMin("weather.fog_weight", w.FogWeight, 0, vb)
	errors.ValidateMin("weather.storm_weight", w.StormWeight, 0, vb)
	errors.ValidateProbability("weather.fog_hit_chance", w.FogHitChance, vb)
	errors.ValidateProbability("weather.storm_hit_chance", w.StormHitChance, vb)
	errors.ValidateProbability("weather.storm_range_factor", w.StormRangeFactor, vb)

	n := g.Night
	errors.ValidateProbability("night.spread_base", n.SpreadBase, vb)
	errors.ValidateProbability("night.spread_daily", n.SpreadDaily, vb)
	errors.ValidateMin("night.zombie_cap", n.ZombieCap, 0, vb)
	errors.ValidateProbability("night.collapse_chance", n.CollapseChance, vb)
	errors.ValidateMin("night.horde_interval", n.HordeInterval, 0, vb)
	errors.ValidateMin("night.horde_min", n.HordeMin, 0, vb)
	if n.HordeMax < n.HordeMin {
		vb.Field("night.horde_max", "must not be below horde_min")
	}
	errors.ValidateProbability("night.supply_drop_chance", n.SupplyDropChance, vb)
	errors.ValidateMin("night.camp_attack_radius", n.CampAttackRadius, 0, vb)
}
