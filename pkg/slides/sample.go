package slides

// SampleRecords returns a deck that uses every slide kind once. Debug mode
// generates it instead of the supplied records.
func SampleRecords() []Record {
	return []Record{
		TitleRecord{
			To:    "クライアント 御中",
			Title: "メインタイトル",
			Body:  "本文",
			Date:  "2025.08.29",
			Notes: "スピーカノート",
		},
		AgendaRecord{
			Title: "アジェンダ",
			Items: []string{"アイテム1", "アイテム2", "アイテム3"},
			Notes: "スピーカノート",
		},
		SectionRecord{
			Title: "章タイトル",
			Notes: "スピーカノート",
		},
		BulletRecord{
			Title:  "箇条書き",
			Header: "ヘッダー",
			Items:  []string{"**アイテム1**", "[[アイテム2]]", "アイテム3"},
			Notes:  "スピーカノート",
		},
		CompareRecord{
			Title:          "比較",
			Description:    "比較の説明",
			LeftBoxHeader:  "左ボックスヘッダー",
			LeftBoxItems:   []string{"左ボックスアイテム1", "左ボックスアイテム2", "左ボックスアイテム3"},
			RightBoxHeader: "右ボックスヘッダー",
			RightBoxItems:  []string{"**右ボックス**[[アイテム1]]", "**右ボックスアイテム2**", "[[右ボックスアイテム3]]"},
			Notes:          "スピーカノート",
		},
		TableRecord{
			Title:       "テーブル",
			Description: "テーブルの説明",
			Headers:     Cells("ヘッダー1", "ヘッダー2", "ヘッダー3", "ヘッダー4"),
			Rows: [][]Cell{
				Cells("データ1-1", "データ2-1", "データ3-1", "データ4-1"),
				Cells("データ1-2", "データ2-2", "データ3-2", "データ4-2"),
				Cells("データ1-3", "データ2-3", "データ3-3", "データ4-3"),
			},
			Notes: "スピーカノート",
		},
		ClosingRecord{
			Notes: "スピーカノート",
		},
	}
}
