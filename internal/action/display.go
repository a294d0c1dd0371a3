package action

// DisplayData is what a view needs to render an action button.
type DisplayData struct {
	// Icon is the design system icon name.
	Icon string

	// Title is the button title. Empty for actions rendered icon-only.
	Title string
}

// Display returns the rendering metadata of a.
func Display(a Action) DisplayData {
	switch a := a.(type) {
	case Star:
		return DisplayData{Icon: "ic-star", Title: "Star"}
	case Unstar:
		return DisplayData{Icon: "ic-star-slash", Title: "Unstar"}
	case MarkRead:
		return DisplayData{Icon: "ic-envelope-open", Title: "Mark as read"}
	case MarkUnread:
		return DisplayData{
			Icon: "ic-envelope-dot", Title: "Mark as unread",
		}
	case MoveTo:
		return DisplayData{Icon: "ic-folder-arrow-in", Title: "Move to…"}
	case LabelAs:
		return DisplayData{Icon: "ic-tag", Title: "Label as…"}
	case PermanentDelete:
		return DisplayData{
			Icon: "ic-trash-cross", Title: "Delete permanently",
		}
	case Snooze:
		return DisplayData{Icon: "ic-clock", Title: "Snooze"}
	case More:
		return DisplayData{Icon: "ic-three-dots-horizontal"}
	case NotSpam:
		return DisplayData{Icon: "ic-not-spam", Title: "Not spam"}
	case MoveToSystemFolder:
		return folderDisplay(a.Folder)
	default:
		return DisplayData{}
	}
}

func folderDisplay(f SystemFolder) DisplayData {
	switch f {
	case FolderArchive:
		return DisplayData{Icon: "ic-archive-box", Title: "Archive"}
	case FolderInbox:
		return DisplayData{Icon: "ic-inbox", Title: "Move to inbox"}
	case FolderSpam:
		return DisplayData{Icon: "ic-spam", Title: "Move to spam"}
	case FolderTrash:
		return DisplayData{Icon: "ic-trash", Title: "Move to trash"}
	default:
		return DisplayData{Icon: "ic-folder", Title: "Move to " + f.String()}
	}
}
