package services

import "testing"

func TestBinFullMessage(t *testing.T) {
	msg := BinFullMessage(3, 2, "plastic", 85.5)

	if msg.Topic != "trashcan-3" {
		t.Errorf("topic = %q, want trashcan-3", msg.Topic)
	}
	if msg.Notification == nil || msg.Notification.Title != "Bin 2 is almost full" {
		t.Errorf("notification = %+v", msg.Notification)
	}

	want := map[string]string{
		"type":       "bin_full",
		"trashcan":   "3",
		"bin_number": "2",
		"waste_type": "plastic",
		"capacity":   "85.50",
	}
	for k, v := range want {
		if msg.Data[k] != v {
			t.Errorf("data[%s] = %q, want %q", k, msg.Data[k], v)
		}
	}
}
