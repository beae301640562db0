// Package category defines the closed set of semantic tags carried by tiles
// and the bitset algebra used to decide which tiles may be combined in a rule.
package category

// Category is one semantic tag. Tiles declare the categories they are, the
// categories they require, the categories they refuse and the categories
// they cancel.
type Category uint8

const (
	// Roles
	Sensor Category = iota
	Filter
	Selector
	Modifier
	Actuator

	// Sensor families
	SensorAlways
	SensorObject // perceives world things (see, hear, bump)
	SensorSight
	SensorHearing
	SensorBump
	SensorInput // any device input
	SensorPointer
	SensorGamePad
	SensorKeyboard
	SensorTimer
	SensorScore

	// Filter families
	FilterObjectType
	FilterColor
	FilterExpression
	FilterNot
	FilterCount
	FilterDistance
	FilterMe
	FilterDead
	FilterSquashed
	FilterMissile
	FilterComparison
	FilterRandom
	FilterPointerPhase
	FilterPointerButton
	FilterStick
	FilterButton
	FilterKey
	FilterTimer
	FilterNumber

	// Selector families
	SelectorToward
	SelectorAway
	SelectorAvoid
	SelectorWander
	SelectorCircle
	SelectorPath
	SelectorForward
	SelectorTurnDirection
	SelectorTurnHeading
	SelectorGamePad
	SelectorFreeze
	SelectorHidden

	// Modifier families
	ModifierSpeed
	ModifierDirection
	ModifierDirectionRelative
	ModifierDirectionWorld
	ModifierVertical
	ModifierColor
	ModifierExpression
	ModifierOnce
	ModifierScoreBucket
	ModifierNumber
	ModifierText
	ModifierConstraint
	ModifierPathColor

	// Actuator families
	ActuatorMovement
	ActuatorTurn
	ActuatorVerb // exclusive once-per-tick verbs
	ActuatorShoot
	ActuatorSay
	ActuatorScore
	ActuatorGlow
	ActuatorExpress
	ActuatorJump
	ActuatorSwitchPage
	ActuatorVanish

	// Semantic capabilities contributed by tiles already in a rule
	ProvidesTarget    // the rule perceives things that can be steered toward
	ProvidesDirection // an input device supplies a direction
	ProvidesPosition  // a pointer supplies a world position
	ProvidesNumber    // a sensor/filter exposes a numeric value

	// Count is the number of categories. It must stay at or below SetBits.
	Count
)

var names = [Count]string{
	Sensor:                    "sensor",
	Filter:                    "filter",
	Selector:                  "selector",
	Modifier:                  "modifier",
	Actuator:                  "actuator",
	SensorAlways:              "sensor.always",
	SensorObject:              "sensor.object",
	SensorSight:               "sensor.sight",
	SensorHearing:             "sensor.hearing",
	SensorBump:                "sensor.bump",
	SensorInput:               "sensor.input",
	SensorPointer:             "sensor.pointer",
	SensorGamePad:             "sensor.gamepad",
	SensorKeyboard:            "sensor.keyboard",
	SensorTimer:               "sensor.timer",
	SensorScore:               "sensor.score",
	FilterObjectType:          "filter.objecttype",
	FilterColor:               "filter.color",
	FilterExpression:          "filter.expression",
	FilterNot:                 "filter.not",
	FilterCount:               "filter.count",
	FilterDistance:            "filter.distance",
	FilterMe:                  "filter.me",
	FilterDead:                "filter.dead",
	FilterSquashed:            "filter.squashed",
	FilterMissile:             "filter.missile",
	FilterComparison:          "filter.comparison",
	FilterRandom:              "filter.random",
	FilterPointerPhase:        "filter.pointerphase",
	FilterPointerButton:       "filter.pointerbutton",
	FilterStick:               "filter.stick",
	FilterButton:              "filter.button",
	FilterKey:                 "filter.key",
	FilterTimer:               "filter.timer",
	FilterNumber:              "filter.number",
	SelectorToward:            "selector.toward",
	SelectorAway:              "selector.away",
	SelectorAvoid:             "selector.avoid",
	SelectorWander:            "selector.wander",
	SelectorCircle:            "selector.circle",
	SelectorPath:              "selector.path",
	SelectorForward:           "selector.forward",
	SelectorTurnDirection:     "selector.turndirection",
	SelectorTurnHeading:       "selector.turnheading",
	SelectorGamePad:           "selector.gamepad",
	SelectorFreeze:            "selector.freeze",
	SelectorHidden:            "selector.hidden",
	ModifierSpeed:             "modifier.speed",
	ModifierDirection:         "modifier.direction",
	ModifierDirectionRelative: "modifier.direction.relative",
	ModifierDirectionWorld:    "modifier.direction.world",
	ModifierVertical:          "modifier.vertical",
	ModifierColor:             "modifier.color",
	ModifierExpression:        "modifier.expression",
	ModifierOnce:              "modifier.once",
	ModifierScoreBucket:       "modifier.scorebucket",
	ModifierNumber:            "modifier.number",
	ModifierText:              "modifier.text",
	ModifierConstraint:        "modifier.constraint",
	ModifierPathColor:         "modifier.pathcolor",
	ActuatorMovement:          "actuator.movement",
	ActuatorTurn:              "actuator.turn",
	ActuatorVerb:              "actuator.verb",
	ActuatorShoot:             "actuator.shoot",
	ActuatorSay:               "actuator.say",
	ActuatorScore:             "actuator.score",
	ActuatorGlow:              "actuator.glow",
	ActuatorExpress:           "actuator.express",
	ActuatorJump:              "actuator.jump",
	ActuatorSwitchPage:        "actuator.switchpage",
	ActuatorVanish:            "actuator.vanish",
	ProvidesTarget:            "provides.target",
	ProvidesDirection:         "provides.direction",
	ProvidesPosition:          "provides.position",
	ProvidesNumber:            "provides.number",
}

var byName = func() map[string]Category {
	m := make(map[string]Category, Count)
	for i, n := range names {
		m[n] = Category(i)
	}
	return m
}()

// String returns the catalog name of the category.
func (c Category) String() string {
	if c >= Count {
		return "unknown"
	}
	return names[c]
}

// Lookup resolves a catalog name to its category.
func Lookup(name string) (Category, bool) {
	c, ok := byName[name]
	return c, ok
}
