// Package slides generates PowerPoint decks from a template presentation and
// a list of slide records.
//
// A template is an ordinary PPTX file with one slide per slide kind. Each
// record names a kind; for every record, in order, the matching template
// slide is copied to the end of the deck, its {{placeholders}} are replaced
// with the record's fields, its table is grown to fit the data, and inline
// markup is turned into formatting.
//
// # Quick Start
//
//	tmpl, err := slides.PrepareFile("template.pptx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tmpl.Close()
//
//	records := []slides.Record{
//	    slides.TitleRecord{Title: "Quarterly review", Date: "2025.08.29"},
//	    slides.BulletRecord{
//	        Title: "Highlights",
//	        Items: []string{"**Revenue** up", "[[Churn]] down"},
//	    },
//	}
//
//	if err := tmpl.GenerateFile(records, "deck.pptx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Records
//
// Records are usually loaded from JSON (comments allowed) or YAML with
// LoadRecordsFile. Every entry carries a "type" field:
//
//	- type: table
//	  title: Results
//	  headers: [Region, Q1, Q2]
//	  rows:
//	    - [North, 12, 14]
//	    - [South, 9, 11]
//	  notes: Mention the South campaign.
//
// A table record can read its headers and rows from an XLSX sheet instead,
// see TableSource.
//
// # Template Slides
//
// The template slide of a kind is found by slide name (the name attribute of
// p:cSld) or by slide id. The defaults are the kind names; Config.Templates
// overrides them.
//
// Placeholders per kind:
//
//	title    {{to}} {{title}} {{body}} {{date}}
//	agenda   {{title}} {{items}}
//	section  {{title}}
//	bullet   {{title}} {{header}} {{items}}
//	compare  {{title}} {{description}} {{left_box_header}} {{left_box_items}}
//	         {{right_box_header}} {{right_box_items}}
//	table    {{title}} {{description}}, plus the first table on the slide
//	closing  none
//
// List fields become one paragraph per item, keeping the paragraph format of
// the placeholder.
//
// # Markup
//
// **text** is rendered bold. [[text]] is rendered bold in
// Config.ImportantColor. Markers do not span lines and cannot be escaped.
// The marker logic itself lives in the render subpackage.
//
// # Configuration
//
// Config is read by viper from defaults, an optional config file and
// SLIDES_* environment variables (SLIDES_LOG_LEVEL, SLIDES_IMPORTANT_COLOR,
// SLIDES_TEMPLATES_TABLE, ...). Engines take a Config explicitly:
//
//	config, err := slides.LoadConfig("slides.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine := slides.NewWithConfig(config)
//
// # Thread Safety
//
// A PreparedTemplate may generate from several goroutines at once. The
// records of one Generate call are processed strictly in order.
package slides
