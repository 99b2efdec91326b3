package icons

// Font Awesome 5 Free 常用图标子集。
var tables = map[Set]map[string]rune{
	Solid: {
		"ambulance":      0xf0f9,
		"apple-alt":      0xf5d1,
		"baby":           0xf77c,
		"battery-full":   0xf240,
		"beer":           0xf0fc,
		"bicycle":        0xf206,
		"bolt":           0xf0e7,
		"book":           0xf02d,
		"briefcase":      0xf0b1,
		"building":       0xf1ad,
		"bus":            0xf207,
		"car":            0xf1b9,
		"carrot":         0xf787,
		"cat":            0xf6be,
		"check":          0xf00c,
		"child":          0xf1ae,
		"circle":         0xf111,
		"cloud":          0xf0c2,
		"coffee":         0xf0f4,
		"dog":            0xf6d3,
		"dollar-sign":    0xf155,
		"envelope":       0xf0e0,
		"euro-sign":      0xf153,
		"female":         0xf182,
		"fire":           0xf06d,
		"fish":           0xf578,
		"flag":           0xf024,
		"frown":          0xf119,
		"globe":          0xf0ac,
		"graduation-cap": 0xf19d,
		"hamburger":      0xf805,
		"heart":          0xf004,
		"home":           0xf015,
		"hospital":       0xf0f8,
		"industry":       0xf275,
		"key":            0xf084,
		"laptop":         0xf109,
		"leaf":           0xf06c,
		"lock":           0xf023,
		"male":           0xf183,
		"map-marker-alt": 0xf3c5,
		"medkit":         0xf0fa,
		"mobile-alt":     0xf3cd,
		"money-bill":     0xf0d6,
		"moon":           0xf186,
		"paw":            0xf1b0,
		"phone":          0xf095,
		"pizza-slice":    0xf818,
		"plane":          0xf072,
		"plug":           0xf1e6,
		"recycle":        0xf1b8,
		"running":        0xf70c,
		"seedling":       0xf4d8,
		"ship":           0xf21a,
		"shopping-cart":  0xf07a,
		"smile":          0xf118,
		"snowflake":      0xf2dc,
		"square":         0xf0c8,
		"star":           0xf005,
		"sun":            0xf185,
		"thumbs-down":    0xf165,
		"thumbs-up":      0xf164,
		"times":          0xf00d,
		"tint":           0xf043,
		"train":          0xf238,
		"trash":          0xf1f8,
		"tree":           0xf1bb,
		"user":           0xf007,
		"users":          0xf0c0,
		"vote-yea":       0xf772,
		"walking":        0xf554,
		"water":          0xf773,
		"wheelchair":     0xf193,
		"yen-sign":       0xf157,
	},
	Regular: {
		"bell":           0xf0f3,
		"bookmark":       0xf02e,
		"building":       0xf1ad,
		"calendar":       0xf133,
		"check-circle":   0xf058,
		"circle":         0xf111,
		"clock":          0xf017,
		"envelope":       0xf0e0,
		"file":           0xf15b,
		"flag":           0xf024,
		"folder":         0xf07b,
		"frown":          0xf119,
		"heart":          0xf004,
		"hospital":       0xf0f8,
		"lightbulb":      0xf0eb,
		"meh":            0xf11a,
		"money-bill-alt": 0xf3d1,
		"moon":           0xf186,
		"smile":          0xf118,
		"snowflake":      0xf2dc,
		"square":         0xf0c8,
		"star":           0xf005,
		"sun":            0xf185,
		"thumbs-down":    0xf165,
		"thumbs-up":      0xf164,
		"times-circle":   0xf057,
		"user":           0xf007,
	},
	Brands: {
		"amazon":   0xf270,
		"android":  0xf17b,
		"apple":    0xf179,
		"aws":      0xf375,
		"chrome":   0xf268,
		"css3":     0xf13c,
		"docker":   0xf395,
		"edge":     0xf282,
		"facebook": 0xf09a,
		"firefox":  0xf269,
		"github":   0xf09b,
		"google":   0xf1a0,
		"html5":    0xf13b,
		"java":     0xf4e4,
		"js":       0xf3b8,
		"linkedin": 0xf08c,
		"linux":    0xf17c,
		"node-js":  0xf3d3,
		"python":   0xf3e2,
		"qq":       0xf1d6,
		"react":    0xf41b,
		"safari":   0xf267,
		"slack":    0xf198,
		"twitter":  0xf099,
		"vuejs":    0xf41f,
		"weibo":    0xf18a,
		"weixin":   0xf1d7,
		"windows":  0xf17a,
		"youtube":  0xf167,
	},
}
