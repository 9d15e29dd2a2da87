package fakeserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

type occurrencePath struct {
	ObjectID int `path:"object_id"`
	Index    int `path:"index"`
}

type filePath struct {
	ObjectID int `path:"object_id"`
	FileID   int `path:"file_id"`
}

type commentPath struct {
	ObjectID  int `path:"object_id"`
	CommentID int `path:"comment_id"`
}

type permissionsPath struct {
	ObjectID int    `path:"object_id"`
	Kind     string `path:"kind" enum:"users,groups,projects"`
}

type permissionPath struct {
	ObjectID    int    `path:"object_id"`
	Kind        string `path:"kind" enum:"users,groups,projects"`
	PrincipalID int    `path:"principal_id"`
}

type setPublicInput struct {
	ObjectID int `path:"object_id"`
	RawBody  []byte
}

type setPermissionInput struct {
	ObjectID    int    `path:"object_id"`
	Kind        string `path:"kind" enum:"users,groups,projects"`
	PrincipalID int    `path:"principal_id"`
	RawBody     []byte
}

type fileBody struct {
	Storage          string `json:"storage" enum:"local,url"`
	OriginalFileName string `json:"original_file_name,omitempty"`
	Base64Content    string `json:"base64_content,omitempty"`
	URL              string `json:"url,omitempty"`
}

type uploadFileInput struct {
	ObjectID int `path:"object_id"`
	Body     fileBody
}

type commentBody struct {
	Content string `json:"content" minLength:"1"`
}

type postCommentInput struct {
	ObjectID int `path:"object_id"`
	Body     commentBody
}

func (s *Server) registerObjectDetailRoutes(hapi huma.API) {
	get(hapi, "get-public", "/objects/{object_id}/permissions/public", func(ctx context.Context, in *objectPath) (*output[bool], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		return reply(o.public)
	})
	put(hapi, "set-public", "/objects/{object_id}/permissions/public", s.setPublic)
	get(hapi, "list-permissions", "/objects/{object_id}/permissions/{kind}", func(ctx context.Context, in *permissionsPath) (*output[map[string]string], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(o.perms[in.Kind]))
		for id, p := range o.perms[in.Kind] {
			out[strconv.Itoa(id)] = p
		}
		return reply(out)
	})
	get(hapi, "get-permission", "/objects/{object_id}/permissions/{kind}/{principal_id}", func(ctx context.Context, in *permissionPath) (*output[string], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		if p, ok := o.perms[in.Kind][in.PrincipalID]; ok {
			return reply(p)
		}
		return reply("none")
	})
	put(hapi, "set-permission", "/objects/{object_id}/permissions/{kind}/{principal_id}", s.setPermission)

	get(hapi, "list-location-occurrences", "/objects/{object_id}/locations", func(ctx context.Context, in *objectPath) (*output[[]LocationOccurrence], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		return reply(append([]LocationOccurrence{}, o.locations...))
	})
	get(hapi, "get-location-occurrence", "/objects/{object_id}/locations/{index}", func(ctx context.Context, in *occurrencePath) (*output[LocationOccurrence], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		if in.Index < 0 || in.Index >= len(o.locations) {
			return nil, huma.Error404NotFound("location occurrence does not exist")
		}
		return reply(o.locations[in.Index])
	})

	get(hapi, "list-files", "/objects/{object_id}/files", func(ctx context.Context, in *objectPath) (*output[[]File], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		return reply(append([]File{}, o.files...))
	})
	get(hapi, "get-file", "/objects/{object_id}/files/{file_id}", func(ctx context.Context, in *filePath) (*output[File], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		if in.FileID < 0 || in.FileID >= len(o.files) {
			return nil, huma.Error404NotFound("file does not exist")
		}
		return reply(o.files[in.FileID])
	})
	post(hapi, "upload-file", "/objects/{object_id}/files", s.uploadFile)

	get(hapi, "list-comments", "/objects/{object_id}/comments", func(ctx context.Context, in *objectPath) (*output[[]Comment], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		return reply(append([]Comment{}, o.comments...))
	})
	get(hapi, "get-comment", "/objects/{object_id}/comments/{comment_id}", func(ctx context.Context, in *commentPath) (*output[Comment], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(o.comments, func(c Comment) bool { return c.CommentID == in.CommentID })
		if i < 0 {
			return nil, huma.Error404NotFound("comment does not exist")
		}
		return reply(o.comments[i])
	})
	post(hapi, "post-comment", "/objects/{object_id}/comments", s.postComment)
}

func (s *Server) setPublic(ctx context.Context, in *setPublicInput) (*output[bool], error) {
	var public bool
	if err := json.Unmarshal(in.RawBody, &public); err != nil {
		return nil, huma.Error400BadRequest("body must be a JSON boolean")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.object(in.ObjectID)
	if err != nil {
		return nil, err
	}
	o.public = public
	return reply(public)
}

func (s *Server) setPermission(ctx context.Context, in *setPermissionInput) (*output[string], error) {
	var perm string
	if err := json.Unmarshal(in.RawBody, &perm); err != nil || !permissionLevels[perm] {
		return nil, huma.Error400BadRequest("body must be one of \"none\", \"read\", \"write\", \"grant\"")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.object(in.ObjectID)
	if err != nil {
		return nil, err
	}
	if in.Kind == "users" {
		if _, ok := s.db.users[in.PrincipalID]; !ok {
			return nil, huma.Error404NotFound("user does not exist")
		}
	}
	if perm == "none" {
		delete(o.perms[in.Kind], in.PrincipalID)
	} else {
		o.perms[in.Kind][in.PrincipalID] = perm
	}
	return reply(perm)
}

func (s *Server) uploadFile(ctx context.Context, in *uploadFileInput) (*createdOutput, error) {
	f := File{Storage: in.Body.Storage}
	switch in.Body.Storage {
	case "local":
		if in.Body.OriginalFileName == "" {
			return nil, huma.Error400BadRequest("original_file_name is required for local files")
		}
		if _, err := base64.StdEncoding.DecodeString(in.Body.Base64Content); err != nil {
			return nil, huma.Error400BadRequest("base64_content is not valid base64")
		}
		f.OriginalFileName = in.Body.OriginalFileName
		f.Base64Content = in.Body.Base64Content
	case "url":
		u, err := url.Parse(in.Body.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, huma.Error400BadRequest("url must be an absolute http(s) URL")
		}
		f.URL = in.Body.URL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.object(in.ObjectID)
	if err != nil {
		return nil, err
	}
	f.ObjectID = in.ObjectID
	f.FileID = len(o.files)
	o.files = append(o.files, f)
	s.db.appendLog(LogUploadFile, in.ObjectID, s.userID, map[string]any{"file_id": f.FileID}, s.now())

	return &createdOutput{Location: fmt.Sprintf("%s/objects/%d/files/%d", prefix, in.ObjectID, f.FileID)}, nil
}

func (s *Server) postComment(ctx context.Context, in *postCommentInput) (*createdOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.object(in.ObjectID)
	if err != nil {
		return nil, err
	}
	c := Comment{
		ObjectID:    in.ObjectID,
		UserID:      s.userID,
		CommentID:   len(o.comments) + 1,
		Content:     in.Body.Content,
		UTCDatetime: s.now().UTC().Format(TimestampLayout),
	}
	o.comments = append(o.comments, c)
	s.db.appendLog(LogPostComment, in.ObjectID, s.userID, map[string]any{"comment_id": c.CommentID}, s.now())

	return &createdOutput{Location: fmt.Sprintf("%s/objects/%d/comments/%d", prefix, in.ObjectID, c.CommentID)}, nil
}
