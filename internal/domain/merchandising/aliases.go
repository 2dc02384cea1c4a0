package merchandising

// StoneAliases maps one canonical gemstone to the surface forms that appear
// in product titles. Aliases are scanned in order and scanning stops at the
// first match, so a title naming a stone twice under different spellings
// still adds its collection once. More specific forms come first; "LAPIS
// LAZULI" must win over the bare "LAPIS".
type StoneAliases struct {
	// Stone is the canonical gemstone key
	Stone CategoryKey
	// Aliases are the title surface forms, most specific first
	Aliases []string
}

func stone(key CategoryKey, aliases ...string) StoneAliases {
	return StoneAliases{Stone: key, Aliases: aliases}
}

// defaultStoneAliases is the fixed gemstone alias table
var defaultStoneAliases = []StoneAliases{
	stone("ROSE_QUARTZ", "ROSE QUARTZ"),
	stone("CLEAR_QUARTZ", "CLEAR QUARTZ", "ROCK CRYSTAL", "CRYSTAL QUARTZ"),
	stone("SMOKY_QUARTZ", "SMOKY QUARTZ", "SMOKEY QUARTZ"),
	stone("TIGER_EYE", "TIGER'S EYE", "TIGERS EYE", "TIGER EYE"),
	stone("LAPIS_LAZULI", "LAPIS LAZULI", "LAPIS"),
	stone("BLACK_ONYX", "BLACK ONYX", "ONYX"),
	stone("AMETHYST", "AMETHYST"),
	stone("CITRINE", "CITRINE"),
	stone("GARNET", "GARNET"),
	stone("PERIDOT", "PERIDOT"),
	stone("MOONSTONE", "MOONSTONE", "RAINBOW MOONSTONE"),
	stone("LABRADORITE", "LABRADORITE"),
	stone("AMAZONITE", "AMAZONITE"),
	stone("AVENTURINE", "AVENTURINE", "GREEN AVENTURINE"),
	stone("MALACHITE", "MALACHITE"),
	stone("TURQUOISE", "TURQUOISE"),
	stone("CARNELIAN", "CARNELIAN"),
	stone("SODALITE", "SODALITE"),
	stone("HEMATITE", "HEMATITE"),
	stone("FLUORITE", "FLUORITE", "RAINBOW FLUORITE"),
	stone("OBSIDIAN", "OBSIDIAN", "BLACK OBSIDIAN", "SNOWFLAKE OBSIDIAN"),
	stone("MOSS_AGATE", "MOSS AGATE"),
	stone("AGATE", "AGATE"),
	stone("JASPER", "JASPER", "RED JASPER", "PICTURE JASPER"),
	stone("JADE", "JADE", "NEPHRITE"),
	stone("HOWLITE", "HOWLITE"),
	stone("RHODONITE", "RHODONITE"),
	stone("UNAKITE", "UNAKITE"),
	stone("PYRITE", "PYRITE", "FOOL'S GOLD"),
	stone("OPAL", "OPAL", "PINK OPAL"),
	stone("PEARL", "PEARL", "PEARLS", "FRESHWATER PEARL"),
}
