package registry

var sizeOptions = []SelectOption{
	{Label: "Small", Value: "small"},
	{Label: "Medium", Value: "medium"},
	{Label: "Large", Value: "large"},
}

var alignOptions = []SelectOption{
	{Label: "Left", Value: "left"},
	{Label: "Center", Value: "center"},
	{Label: "Right", Value: "right"},
}

// Builtin returns the stock editor catalog. The definitions are static, so
// construction cannot fail; a broken catalog is a programming error.
func Builtin() *Registry {
	reg, err := New(builtinDefinitions(), WithCategories(builtinCategories()))
	if err != nil {
		panic(err)
	}
	return reg
}

func builtinDefinitions() []ComponentDefinition {
	return []ComponentDefinition{
		{
			Type:       TypeHero,
			Label:      "Hero Banner",
			FieldOrder: []string{"title", "subtitle", "height", "backgroundImage"},
			Fields: map[string]FieldSpec{
				"title":           {Kind: FieldText, Label: "Title"},
				"subtitle":        {Kind: FieldTextarea, Label: "Subtitle"},
				"height":          {Kind: FieldSelect, Label: "Height", Options: sizeOptions},
				"backgroundImage": {Kind: FieldUpload, Label: "Background Image"},
			},
			Defaults: map[string]any{
				"title":           "Welcome",
				"subtitle":        "",
				"height":          "medium",
				"backgroundImage": "",
			},
		},
		{
			Type:       TypeText,
			Label:      "Text",
			FieldOrder: []string{"content", "align"},
			Fields: map[string]FieldSpec{
				"content": {Kind: FieldTextarea, Label: "Content"},
				"align":   {Kind: FieldSelect, Label: "Alignment", Options: alignOptions},
			},
			Defaults: map[string]any{
				"content": "Enter your text here...",
				"align":   "left",
			},
		},
		{
			Type:       TypeImage,
			Label:      "Image",
			FieldOrder: []string{"src", "alt", "caption"},
			Fields: map[string]FieldSpec{
				"src":     {Kind: FieldUpload, Label: "Image"},
				"alt":     {Kind: FieldText, Label: "Alt Text"},
				"caption": {Kind: FieldText, Label: "Caption"},
			},
			Defaults: map[string]any{
				"src":     "",
				"alt":     "",
				"caption": "",
			},
		},
		{
			Type:       TypeTwoColumn,
			Label:      "Two Columns",
			FieldOrder: []string{"leftWidth", "gap"},
			Fields: map[string]FieldSpec{
				"leftWidth": {Kind: FieldNumber, Label: "Left Width (%)", Min: 20, Max: 80},
				"gap":       {Kind: FieldSelect, Label: "Gap", Options: sizeOptions},
			},
			Defaults: map[string]any{
				"leftWidth": float64(50),
				"gap":       "medium",
			},
			Zones: []string{"left", "right"},
		},
		{
			Type:       TypeCard,
			Label:      "Card",
			FieldOrder: []string{"title", "description", "imageUrl", "linkUrl", "linkText"},
			Fields: map[string]FieldSpec{
				"title":       {Kind: FieldText, Label: "Title"},
				"description": {Kind: FieldTextarea, Label: "Description"},
				"imageUrl":    {Kind: FieldUpload, Label: "Image"},
				"linkUrl":     {Kind: FieldText, Label: "Link URL"},
				"linkText":    {Kind: FieldText, Label: "Link Text"},
			},
			Defaults: map[string]any{
				"title":       "Card Title",
				"description": "Card description...",
				"imageUrl":    "",
				"linkUrl":     "",
				"linkText":    "Learn More",
			},
		},
		{
			Type:       TypeButton,
			Label:      "Button",
			FieldOrder: []string{"label", "url", "variant", "size", "align"},
			Fields: map[string]FieldSpec{
				"label": {Kind: FieldText, Label: "Label"},
				"url":   {Kind: FieldText, Label: "URL"},
				"variant": {Kind: FieldSelect, Label: "Variant", Options: []SelectOption{
					{Label: "Primary", Value: "primary"},
					{Label: "Secondary", Value: "secondary"},
					{Label: "Outline", Value: "outline"},
				}},
				"size":  {Kind: FieldSelect, Label: "Size", Options: sizeOptions},
				"align": {Kind: FieldSelect, Label: "Alignment", Options: alignOptions},
			},
			Defaults: map[string]any{
				"label":   "Click Me",
				"url":     "#",
				"variant": "primary",
				"size":    "medium",
				"align":   "left",
			},
		},
		{
			Type:       TypeSpacer,
			Label:      "Spacer",
			FieldOrder: []string{"height"},
			Fields: map[string]FieldSpec{
				"height": {Kind: FieldNumber, Label: "Height (px)", Min: 8, Max: 160},
			},
			Defaults: map[string]any{
				"height": float64(32),
			},
		},
	}
}

func builtinCategories() []Category {
	return []Category{
		{Key: "layout", Label: "Layout", Types: []BlockType{TypeTwoColumn, TypeSpacer}},
		{Key: "content", Label: "Content", Types: []BlockType{TypeHero, TypeText, TypeCard}},
		{Key: "media", Label: "Media", Types: []BlockType{TypeImage}},
		{Key: "actions", Label: "Actions", Types: []BlockType{TypeButton}},
	}
}
