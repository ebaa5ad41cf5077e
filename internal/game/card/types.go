package card

import "strings"

// Type is a card type (rule 205.2a).
type Type string

const (
	TypeArtifact     Type = "Artifact"
	TypeBattle       Type = "Battle"
	TypeCreature     Type = "Creature"
	TypeEnchantment  Type = "Enchantment"
	TypeInstant      Type = "Instant"
	TypeKindred      Type = "Kindred"
	TypeLand         Type = "Land"
	TypePlaneswalker Type = "Planeswalker"
	TypeSorcery      Type = "Sorcery"
)

// IsPermanentType reports whether objects of this type can exist on the battlefield.
func (t Type) IsPermanentType() bool {
	switch t {
	case TypeInstant, TypeSorcery:
		return false
	default:
		return true
	}
}

// Subtype is a type-line subtype such as "Elf", "Forest" or "Equipment".
type Subtype string

// nonCreatureSubtypes lists subtypes that belong to other card types. Changeling
// only grants creature types, so these are never implied by it.
var nonCreatureSubtypes = map[Subtype]struct{}{
	// land
	"Plains": {}, "Island": {}, "Swamp": {}, "Mountain": {}, "Forest": {},
	"Desert": {}, "Gate": {}, "Lair": {}, "Locus": {}, "Cave": {}, "Town": {},
	"Urza's": {}, "Mine": {}, "Power-Plant": {}, "Tower": {}, "Sphere": {},
	// artifact
	"Equipment": {}, "Vehicle": {}, "Treasure": {}, "Food": {}, "Clue": {},
	"Blood": {}, "Fortification": {}, "Map": {}, "Powerstone": {}, "Gold": {},
	"Incubator": {}, "Attraction": {}, "Contraption": {}, "Bobblehead": {},
	// enchantment
	"Aura": {}, "Saga": {}, "Cartouche": {}, "Curse": {}, "Shrine": {},
	"Class": {}, "Role": {}, "Room": {}, "Case": {}, "Background": {},
	// spell
	"Adventure": {}, "Arcane": {}, "Lesson": {}, "Trap": {},
	// battle
	"Siege": {},
}

// IsCreatureType reports whether the subtype is a creature type.
func (s Subtype) IsCreatureType() bool {
	_, ok := nonCreatureSubtypes[s]
	return !ok
}

// Color is one of the five colors of magic.
type Color string

const (
	ColorWhite Color = "W"
	ColorBlue  Color = "U"
	ColorBlack Color = "B"
	ColorRed   Color = "R"
	ColorGreen Color = "G"
)

// ParseColor accepts either the single-letter symbol or the color name.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return ColorWhite, true
	case "u", "blue":
		return ColorBlue, true
	case "b", "black":
		return ColorBlack, true
	case "r", "red":
		return ColorRed, true
	case "g", "green":
		return ColorGreen, true
	}
	return "", false
}

// Keyword is a keyword ability or an ability flag that the rules core tracks by name.
type Keyword string

const (
	KeywordChangeling     Keyword = "Changeling"
	KeywordDeathtouch     Keyword = "Deathtouch"
	KeywordDefender       Keyword = "Defender"
	KeywordDoubleStrike   Keyword = "Double Strike"
	KeywordFirstStrike    Keyword = "First Strike"
	KeywordFlash          Keyword = "Flash"
	KeywordFlying         Keyword = "Flying"
	KeywordHaste          Keyword = "Haste"
	KeywordHexproof       Keyword = "Hexproof"
	KeywordIndestructible Keyword = "Indestructible"
	KeywordLifelink       Keyword = "Lifelink"
	KeywordMenace         Keyword = "Menace"
	KeywordReach          Keyword = "Reach"
	KeywordShroud         Keyword = "Shroud"
	KeywordTrample        Keyword = "Trample"
	KeywordVigilance      Keyword = "Vigilance"

	// Ability flags that behave like keywords for projection purposes.
	KeywordCantBlock  Keyword = "Can't Block"
	KeywordCantAttack Keyword = "Can't Attack"
)

// ParseType normalises a card type name ("creature", "Creature").
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	for _, t := range []Type{
		TypeArtifact, TypeBattle, TypeCreature, TypeEnchantment, TypeInstant,
		TypeKindred, TypeLand, TypePlaneswalker, TypeSorcery,
	} {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}
